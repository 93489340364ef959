// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EmberClient Contributors

// Package errutil bridges typed internal errors into the boolean plugin
// boundary: engine operations build oops errors with stable codes, and the
// facade logs them before collapsing to false.
package errutil

// Stable codes attached to oops errors by the engine. The plugin boundary
// reports bare booleans; these codes survive in the host logs.
const (
	// CodeNotFound marks unregister/removal of an unknown identity.
	CodeNotFound = "NOT_FOUND"
	// CodeAlreadyExists marks duplicate registration of an instance or
	// listener.
	CodeAlreadyExists = "ALREADY_EXISTS"
	// CodeInvalidArgument marks nil/empty ids, nil instances, unregistered
	// parents, and undersized enumeration buffers.
	CodeInvalidArgument = "INVALID_ARGUMENT"
	// CodeUnrecognized marks a capability query id the responder does not
	// understand.
	CodeUnrecognized = "UNRECOGNIZED"
)
