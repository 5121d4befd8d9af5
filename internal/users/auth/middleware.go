// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	requestutil "github.com/abbassi001/souk-bazaar-hub/internal/platform/request"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/respond"
)

// MirrorSource returns the live mirror of a device.
type MirrorSource interface {
	Get(ctx context.Context, deviceID string) (*Mirror, error)
}

/*
RestoreSession attaches the device's [Mirror] to the request and brings it in
line with the access token the request presents.

  - No token: a mirrored session is dropped (the browser signed out or its
    cookie expired).
  - A token the mirror does not hold: the session is restored through the
    gateway before the request continues.

Must run after the device middleware.
*/
func RestoreSession(controller *Controller, mirrors MirrorSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			deviceID := ctxutil.GetDeviceID(ctx)
			if deviceID == "" {
				next.ServeHTTP(writer, request)
				return
			}

			mirror, err := mirrors.Get(ctx, deviceID)
			if err != nil {
				respond.Error(writer, request, apperr.ServiceUnavailable("Session is temporarily unavailable").WithCause(err))
				return
			}
			token := requestutil.BearerToken(request)

			switch {
			case token == "":
				if mirror.hasSession() {
					mirror.clear()
				}
			case mirror.staleFor(token, controller.now()):
				if err := controller.Restore(ctx, mirror, token); err != nil {
					ctxutil.GetLogger(ctx).InfoContext(ctx, "session_restore_failed", slog.Any("error", err))
				}
			}

			next.ServeHTTP(writer, request.WithContext(WithMirror(ctx, mirror)))
		})
	}
}
