// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

// Package ctxkey defines typed context keys used by middleware and handlers.
//
// # Safety
//
// An unexported key type prevents collisions with third-party packages that
// also store values in a [context.Context].
package ctxkey

type key string

const (
	// KeyRequestID is the context key for the X-Request-ID correlation value.
	KeyRequestID key = "request_id"

	// KeyUser is the context key for the verified access token claims.
	KeyUser key = "user"

	// KeyLogger is the context key for the per-request [*log/slog.Logger].
	KeyLogger key = "logger"

	// KeyDevice is the context key for the device id taken from the device cookie.
	KeyDevice key = "device"

	// KeyNotices is the context key for the per-request notification collector.
	KeyNotices key = "notices"

	// KeyMirror is the context key for the device's session mirror.
	KeyMirror key = "mirror"
)
