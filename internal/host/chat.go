// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package host

import (
	"log/slog"

	"github.com/emberclient/emberclient/internal/event"
	"github.com/emberclient/emberclient/pkg/sdk"
)

// hostSenderName is the sender recorded for lines the host itself queues.
const hostSenderName = "client"

// ChatSink receives chat log lines that survive dispatch. The embedding
// client supplies one that renders into its chat window.
type ChatSink interface {
	WriteChatLine(sender, context, text string)
}

// slogSink is the fallback sink when the embedding client does not supply
// one.
type slogSink struct {
	logger *slog.Logger
}

func (s *slogSink) WriteChatLine(sender, context, text string) {
	s.logger.Info("chat", "sender", sender, "context", context, "text", text)
}

// SubmitChat runs the "evn_chat_send" dispatch for a message the player
// submitted. It returns the message the client should actually process,
// with any listener override applied, and false when a listener cancelled
// the send outright.
//
// The chat subsystem is the producer here; the host only brokers the
// dispatch.
func (h *Host) SubmitChat(message string) (string, bool) {
	ev := &sdk.ChatSendEvent{Message: message}
	if h.dispatcher.Dispatch(sdk.EventChatSend, ev) == event.Suppressed {
		return "", false
	}
	if replaced, ok := ev.MessageOverride.Consume(); ok {
		return replaced, true
	}
	return ev.Message, true
}

// QueueLogChat logs text into the ingame chat, subject to the
// "evn_chat_log" dispatch: listeners may cancel the line or override the
// displayed text. Log only, nothing is sent. Returns false only when text
// is empty; a line suppressed by a listener still counts as handled.
func (h *Host) QueueLogChat(text string) bool {
	return h.logChat(hostSenderName, "log", text)
}

// LogChatFrom is QueueLogChat with an explicit sender and context, for the
// client's own chat subsystem logging received messages.
func (h *Host) LogChatFrom(sender, context, text string) bool {
	return h.logChat(sender, context, text)
}

func (h *Host) logChat(sender, context, text string) bool {
	if text == "" {
		h.logger.Warn("queue log chat failed", "reason", "empty text")
		return false
	}

	ev := &sdk.ChatLogEvent{
		Message:    text,
		SenderName: sender,
		Context:    context,
	}
	if h.dispatcher.Dispatch(sdk.EventChatLog, ev) == event.Suppressed {
		h.countChatLine("suppressed")
		return true
	}

	display := ev.Message
	outcome := "logged"
	if replaced, ok := ev.DisplayOverride.Consume(); ok {
		display = replaced
		outcome = "overridden"
	}
	h.chatSink.WriteChatLine(ev.SenderName, ev.Context, display)
	h.countChatLine(outcome)
	return true
}

func (h *Host) countChatLine(outcome string) {
	if h.metrics == nil {
		return
	}
	h.metrics.ChatLinesTotal.WithLabelValues(outcome).Inc()
}
