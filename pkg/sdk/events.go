// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

package sdk

// Event ids are stable string literals: they are the wire format of the
// in-process protocol and are never renamed without a Major version bump.
const (
	// EventChatSend fires when the player submits chat input, including
	// plain text and commands.
	EventChatSend = "evn_chat_send"
	// EventChatLog fires when a line is about to be written to the chat log.
	EventChatLog = "evn_chat_log"
	// EventPluginLoaded fires after a plugin record is inserted.
	EventPluginLoaded = "evn_plug_loaded"
	// EventPluginUnload fires before a plugin record is removed.
	EventPluginUnload = "evn_plug_unload"
	// EventModuleLoaded fires after a module record is inserted.
	EventModuleLoaded = "evn_mod_loaded"
	// EventModuleUnload fires before a module record is removed.
	EventModuleUnload = "evn_mod_unload"
)

// Action is the directive a listener leaves on the payload to control how
// dispatch continues after it returns.
type Action uint32

const (
	// ActionNothing continues dispatch to the remaining listeners and then
	// to the client's default handling.
	ActionNothing Action = iota
	// ActionCancel stops dispatch. Neither later listeners nor the client's
	// default handling observe the event, and pending overrides are dropped.
	ActionCancel
	// ActionCommit stops dispatch to later listeners but lets the client's
	// default handling proceed, applying the last pending override.
	ActionCommit
)

// String returns the action name. Unrecognized values return "unknown".
func (a Action) String() string {
	switch a {
	case ActionNothing:
		return "nothing"
	case ActionCancel:
		return "cancel"
	case ActionCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Control is embedded in every event payload and carries the listener's
// dispatch directive. The zero value means ActionNothing.
type Control struct {
	Action Action
}

// EventControl returns the control block. Embedding Control gives a payload
// type this method, and with it the Payload interface.
func (c *Control) EventControl() *Control { return c }

// Payload is implemented by every event payload, normally by embedding
// Control. The dispatcher is otherwise payload-shape-agnostic: the concrete
// type is a convention between the producer and its listeners.
type Payload interface {
	EventControl() *Control
}

// Listener handles one event dispatch. A listener is invoked once per
// dispatch of the event it is registered for, in registration order.
//
// Listener values must be comparable; registration and removal match by
// value equality of the registered value, not by object identity of some
// wrapper. Dispatch is synchronous on the producer's goroutine, so listeners
// are expected to be non-blocking and short-lived. A listener that never
// returns blocks the producer indefinitely; the engine does not guard
// against that.
type Listener interface {
	HandleEvent(p Payload)
}

// Overrider is implemented by payloads that carry override slots, so the
// dispatcher can release pending overrides on cancellation.
type Overrider interface {
	Overrides() []*Override
}

// Override is a single-consumer override slot on an event payload.
//
// A listener calls Set to redirect the value a later consumer acts on; the
// replacement flows forward through the shared payload, so listeners later
// in the chain observe it via Peek and may replace it again. The last value
// pending at short-circuit, or at the natural end of the chain, wins. The
// producer's default handling consumes the slot exactly once; afterwards the
// slot is empty, so a stale value cannot be picked up by an accidental
// second read. The zero value is an empty slot.
type Override struct {
	value *string
	spent bool
}

// Set stages s as the replacement value. Staging a new value reopens a slot
// that was already consumed.
func (o *Override) Set(s string) {
	v := s
	o.value = &v
	o.spent = false
}

// Peek returns the pending replacement without consuming it.
func (o *Override) Peek() (string, bool) {
	if o.value == nil {
		return "", false
	}
	return *o.value, true
}

// Consume returns the pending replacement and empties the slot. The second
// of two consuming reads finds nothing: the loan is read at most once.
func (o *Override) Consume() (string, bool) {
	if o.value == nil || o.spent {
		return "", false
	}
	v := *o.value
	o.value = nil
	o.spent = true
	return v, true
}

// Clear drops a pending replacement without consuming it. The dispatcher
// clears slots when a listener cancels the event.
func (o *Override) Clear() {
	o.value = nil
}

// Pending reports whether a replacement is staged and not yet consumed.
func (o *Override) Pending() bool { return o.value != nil }

// ChatSendEvent is the payload for EventChatSend.
type ChatSendEvent struct {
	Control

	// Message is the text the player submitted.
	Message string

	// MessageOverride redirects the text the client actually processes.
	// The staged value outlives the dispatch call by construction (the slot
	// copies it), so listeners need no lifetime gymnastics:
	//
	//	func (l *censor) HandleEvent(p sdk.Payload) {
	//		m := p.(*sdk.ChatSendEvent)
	//		m.MessageOverride.Set("goodbye")
	//		m.Action = sdk.ActionCommit
	//	}
	//
	// sends "goodbye" to chat regardless of what the player typed.
	MessageOverride Override
}

// Overrides returns the event's override slots.
func (e *ChatSendEvent) Overrides() []*Override {
	return []*Override{&e.MessageOverride}
}

// ChatLogEvent is the payload for EventChatLog.
type ChatLogEvent struct {
	Control

	// Message is the message that was sent to chat.
	Message string
	// SenderName is the name of the sender.
	SenderName string
	// Context is the context of the message.
	Context string

	// DisplayOverride redirects the text actually displayed in the chat log
	// in place of Message.
	DisplayOverride Override
}

// Overrides returns the event's override slots.
func (e *ChatLogEvent) Overrides() []*Override {
	return []*Override{&e.DisplayOverride}
}

// PluginEvent is the payload for EventPluginLoaded and EventPluginUnload.
// During an unload dispatch the instance is still resolvable through the
// registry.
type PluginEvent struct {
	Control

	Name     string
	Instance Plugin
}

// ModuleEvent is the payload for EventModuleLoaded and EventModuleUnload.
type ModuleEvent struct {
	Control

	Parent   Plugin
	Instance Module
}

// typedListener dispatches only payloads of its bound concrete type.
type typedListener[T Payload] struct {
	fn func(T)
}

func (l *typedListener[T]) HandleEvent(p Payload) {
	if ev, ok := p.(T); ok {
		l.fn(ev)
	}
}

// ListenTo binds a typed handler to a Listener, checking the payload type at
// compile time on the handler side and at dispatch time on the wire:
//
//	l := sdk.ListenTo(func(e *sdk.ChatSendEvent) { ... })
//	client.AddEventListener(sdk.EventChatSend, l)
//
// Keep the returned value; removing the listener requires the same value
// that was registered.
func ListenTo[T Payload](fn func(T)) Listener {
	return &typedListener[T]{fn: fn}
}
