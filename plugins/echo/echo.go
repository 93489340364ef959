// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

// Package echo implements a sample plugin that echoes chat messages back
// into the chat log. It exercises the full plugin surface: registration,
// event listening, the chat log, and the capability query protocol.
//
// Any message starting with "!echo " is answered with the remainder of the
// message written to the ingame chat log.
package echo

import (
	"strings"

	"github.com/emberclient/emberclient/pkg/sdk"
)

// trigger is the chat prefix the plugin responds to.
const trigger = "!echo "

// Plugin echoes triggered chat messages back into the chat log.
type Plugin struct {
	client   sdk.Client
	listener sdk.Listener
}

// New creates an unattached echo plugin.
func New() *Plugin {
	return &Plugin{}
}

// Attach registers the plugin with the client and starts listening for
// outgoing chat. It returns false if the client refuses registration.
func (p *Plugin) Attach(client sdk.Client) bool {
	if !client.RegisterPlugin(p, "echo") {
		return false
	}
	p.client = client

	p.listener = sdk.ListenTo(func(e *sdk.ChatSendEvent) {
		p.onChatSend(e)
	})
	if !client.AddEventListener(sdk.EventChatSend, p.listener) {
		client.UnregisterPlugin(p)
		p.client = nil
		p.listener = nil
		return false
	}
	return true
}

// Detach removes the listener and unregisters the plugin.
func (p *Plugin) Detach() bool {
	if p.client == nil {
		return false
	}
	p.client.RemoveEventListener(p.listener)
	ok := p.client.UnregisterPlugin(p)
	p.client = nil
	p.listener = nil
	return ok
}

// Query answers "echo.trigger" with the chat prefix the plugin reacts to.
func (p *Plugin) Query(id string, out any) bool {
	if id == "echo.trigger" {
		if s, ok := out.(*string); ok {
			*s = trigger
			return true
		}
	}
	return false
}

func (p *Plugin) onChatSend(e *sdk.ChatSendEvent) {
	text := e.Message
	if v, ok := e.MessageOverride.Peek(); ok {
		text = v
	}
	rest, ok := strings.CutPrefix(text, trigger)
	if !ok {
		return
	}
	p.client.QueueLogChat(rest)
}
