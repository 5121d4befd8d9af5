// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
	"github.com/abbassi001/souk-bazaar-hub/pkg/slice"
)

// # Service Layer

// Service edits the profile and manages the sessions of the signed-in user.
type Service struct {
	profiles ProfileRepository
	sessions SessionRepository
	mirrors  MirrorRefresher
	notifier notify.Notifier
	now      func() time.Time
}

// NewService constructs a new [Service]. A nil notifier routes to the request collector.
func NewService(profiles ProfileRepository, sessions SessionRepository, mirrors MirrorRefresher, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Request
	}
	return &Service{
		profiles: profiles,
		sessions: sessions,
		mirrors:  mirrors,
		notifier: notifier,
		now:      time.Now,
	}
}

// # Profile Management

/*
UpdateName renames user userID.

mirror is the requesting device's. It is refreshed so that the header shows
the new name without signing in again.

Returns:
  - *profile.User: the updated profile
  - error: VALIDATION_ERROR, NOT_FOUND or storage failures
*/
func (service *Service) UpdateName(ctx context.Context, userID string, mirror *auth.Mirror, name string) (*profile.User, error) {
	name = strings.TrimSpace(name)
	v := &validate.Validator{}
	v.Required("name", name).MaxLen("name", name, NameMaxLength)
	if err := v.Err(); err != nil {
		service.notifier.Notify(ctx, notify.Error("Erreur de validation", "Veuillez saisir un nom valide."))
		return nil, err
	}

	user, err := service.profiles.UpdateName(ctx, userID, name)
	if err != nil {
		service.notifier.Notify(ctx, notify.Error("Erreur", "Votre profil n'a pas pu être mis à jour."))
		return nil, fmt.Errorf("account_service_update_name_failed: %w", err)
	}

	service.mirrors.ProfileUpdated(ctx, mirror, user)

	ctxutil.GetLogger(ctx).InfoContext(ctx, "profile_name_updated", slog.String("user_id", user.ID))
	service.notifier.Notify(ctx, notify.Success("Profil mis à jour", "Vos informations ont été enregistrées."))

	return user, nil
}

// # Session Security

// ListSessions returns the active sessions of userID. The one matching
// currentSessionID is flagged.
func (service *Service) ListSessions(ctx context.Context, userID, currentSessionID string) ([]SessionInfo, error) {
	sessions, err := service.sessions.ListActive(ctx, userID, service.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("account_service_list_sessions_failed: %w", err)
	}

	return slice.Map(sessions, func(session Session) SessionInfo {
		return SessionInfo{
			ID:        session.ID,
			UserAgent: session.UserAgent,
			IPAddress: session.IPAddress,
			CreatedAt: session.CreatedAt,
			ExpiresAt: session.ExpiresAt,
			IsCurrent: session.ID == currentSessionID,
		}
	}), nil
}

/*
RevokeSession closes one session of userID.

The current session cannot be closed here: sign-out also clears the device
state, which a bare revocation would leave behind.
*/
func (service *Service) RevokeSession(ctx context.Context, userID, sessionID, currentSessionID string) error {
	if sessionID == currentSessionID {
		return apperr.ValidationError("Utilisez la déconnexion pour fermer la session en cours",
			apperr.FieldError{Field: "id", Message: "is the current session"})
	}

	revoked, err := service.sessions.Revoke(ctx, userID, sessionID)
	if err != nil {
		return fmt.Errorf("account_service_revoke_session_failed: %w", err)
	}
	if !revoked {
		return apperr.NotFound("Session")
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_session_revoked",
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)
	service.notifier.Notify(ctx, notify.Success("Session fermée", "L'appareil a été déconnecté."))

	return nil
}

// RevokeOtherSessions closes every session of userID but the current one.
func (service *Service) RevokeOtherSessions(ctx context.Context, userID, currentSessionID string) (int64, error) {
	closed, err := service.sessions.RevokeOthers(ctx, userID, currentSessionID)
	if err != nil {
		return 0, fmt.Errorf("account_service_revoke_others_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_other_sessions_revoked",
		slog.String("user_id", userID),
		slog.Int64("count", closed),
	)
	service.notifier.Notify(ctx, notify.Success("Sessions fermées",
		fmt.Sprintf("%d autre(s) session(s) ont été déconnectée(s).", closed)))

	return closed, nil
}
