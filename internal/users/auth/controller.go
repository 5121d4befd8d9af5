// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/devicestate"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// # Contracts & Types

// ProfileResolver turns a subject id into a domain user.
type ProfileResolver interface {
	Resolve(ctx context.Context, subjectID string) (*profile.User, error)
}

// Config holds the controller's tunables.
type Config struct {
	// GatewayTimeout bounds every call to the auth service.
	GatewayTimeout time.Duration
	// ConfirmRedirectURL is where the confirmation link sends the user back to.
	ConfirmRedirectURL string
}

// Controller implements the authentication flow over a device [Mirror].
type Controller struct {
	auth     gateway.AuthService
	resolver ProfileResolver
	state    devicestate.KV
	notifier notify.Notifier
	config   Config
	now      func() time.Time
}

// NewController constructs a [Controller]. A nil notifier routes to the request collector.
func NewController(auth gateway.AuthService, resolver ProfileResolver, state devicestate.KV, notifier notify.Notifier, config Config) *Controller {
	if notifier == nil {
		notifier = notify.Request
	}
	return &Controller{
		auth:     auth,
		resolver: resolver,
		state:    state,
		notifier: notifier,
		config:   config,
		now:      time.Now,
	}
}

// SignUpInput carries a registration form.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// SignInResult is the outcome of a successful sign-in.
type SignInResult struct {
	User     *profile.User
	Session  *gateway.Session
	Redirect string
}

// # Sign Up

/*
SignUp registers an account. No session is opened: the account stays
unconfirmed until the mailed link is followed.

Preconditions are checked in order (email shape, password length, name) and
a violation never reaches the gateway.
*/
func (controller *Controller) SignUp(ctx context.Context, mirror *Mirror, input SignUpInput) error {
	release, ok := mirror.begin(OpSignUp)
	if !ok {
		return errSubmissionInProgress()
	}
	defer release()

	if err := validateSignUp(input); err != nil {
		controller.notifier.Notify(ctx, notify.Error(titleSignUpFailed, err.Message))
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, controller.config.GatewayTimeout)
	defer cancel()

	_, err := controller.auth.SignUp(callCtx, gateway.SignUpRequest{
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
		Metadata: gateway.UserMetadata{
			Name: strings.TrimSpace(input.Name),
			Role: string(sec.ParseRole(input.Role)),
		},
		RedirectTo: controller.config.ConfirmRedirectURL,
	})
	if err != nil {
		classified := classifySignUp(err)
		ctxutil.GetLogger(ctx).WarnContext(ctx, "sign_up_failed",
			slog.String("code", classified.Code),
			slog.Any("error", err),
		)
		controller.notifier.Notify(ctx, notify.Error(titleSignUpFailed, classified.Message))
		return classified
	}

	controller.notifier.Notify(ctx, notify.Success("Inscription réussie!",
		"Votre compte a été créé avec succès. Veuillez vérifier votre email pour confirmer votre inscription."))
	return nil
}

func validateSignUp(input SignUpInput) *apperr.AppError {
	email := strings.TrimSpace(input.Email)
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return errValidation("email", "Veuillez saisir une adresse email valide")
	}
	if len([]rune(input.Password)) < MinPasswordLength {
		return errValidation("password", "Le mot de passe doit contenir au moins 6 caractères")
	}
	if strings.TrimSpace(input.Name) == "" {
		return errValidation("name", "Veuillez saisir votre nom complet")
	}
	return nil
}

// # Sign In

/*
SignIn validates credentials, resolves the profile and adopts the session
into the mirror.

The redirect is the path remembered by the route guard when there is one,
otherwise the landing page of the user's role.
*/
func (controller *Controller) SignIn(ctx context.Context, mirror *Mirror, email, password string) (*SignInResult, error) {
	release, ok := mirror.begin(OpSignIn)
	if !ok {
		return nil, errSubmissionInProgress()
	}
	defer release()

	logger := ctxutil.GetLogger(ctx)

	if strings.TrimSpace(email) == "" || password == "" {
		err := errValidation("email", "Veuillez remplir tous les champs")
		controller.notifier.Notify(ctx, notify.Error(titleSignInFailed, err.Message))
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, controller.config.GatewayTimeout)
	session, err := controller.auth.SignInWithPassword(callCtx, strings.TrimSpace(email), password)
	cancel()
	if err != nil {
		classified := classifySignIn(err)
		logger.WarnContext(ctx, "sign_in_failed", slog.String("code", classified.Code), slog.Any("error", err))

		title := titleSignInFailed
		if classified.Code == CodeEmailNotConfirmed {
			title = titleNotConfirmed
		}
		controller.notifier.Notify(ctx, notify.Error(title, classified.Message))
		return nil, classified
	}

	user, err := controller.resolver.Resolve(ctx, session.UserID)
	if err != nil {
		classified := apperr.As(err)
		if classified == nil {
			classified = profile.BackendUnavailable(err)
		}
		logger.ErrorContext(ctx, "sign_in_profile_failed", slog.String("user_id", session.UserID), slog.Any("error", err))
		controller.revoke(ctx, session.AccessToken)
		controller.notifier.Notify(ctx, notify.Error(titleSignInFailed, classified.Message))
		return nil, classified
	}

	mirror.adopt(user, session)
	controller.rememberDisplayName(ctx, mirror.DeviceID(), user.Name)

	redirect := controller.takeReturnPath(ctx, mirror.DeviceID(), user.Role)

	controller.notifier.Notify(ctx, notify.Success("Connexion réussie!", "Vous êtes maintenant connecté."))
	return &SignInResult{User: user, Session: session, Redirect: redirect}, nil
}

// # Sign Out

/*
SignOut ends the session. The mirror is cleared whatever the gateway
answers; a gateway failure is reported but does not fail the operation.

Returns the path to navigate to.
*/
func (controller *Controller) SignOut(ctx context.Context, mirror *Mirror) (string, error) {
	release, ok := mirror.begin(OpSignOut)
	if !ok {
		return "", errSubmissionInProgress()
	}
	defer release()

	var gatewayErr error
	if session := mirror.Snapshot().Session; session != nil {
		callCtx, cancel := context.WithTimeout(ctx, controller.config.GatewayTimeout)
		gatewayErr = controller.auth.SignOut(callCtx, session.AccessToken)
		cancel()
	}

	mirror.clear()
	if err := controller.state.Delete(ctx, mirror.DeviceID(), constants.DeviceKeyDisplayName); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "display_name_clear_failed", slog.Any("error", err))
	}

	if gatewayErr != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "sign_out_gateway_failed", slog.Any("error", gatewayErr))
		controller.notifier.Notify(ctx, notify.Error(titleSignOutFailed,
			"Une erreur est survenue lors de la déconnexion."))
		return constants.PathLogin, nil
	}

	controller.notifier.Notify(ctx, notify.Success("Déconnexion réussie", "Vous avez été déconnecté avec succès."))
	return constants.PathLogin, nil
}

// # Session Bootstrap

/*
Restore brings the mirror in line with accessToken on initial load. The
mirror reports Loading while the gateway and the resolver are consulted.

An invalid token clears the mirror. Restore emits no notification.
*/
func (controller *Controller) Restore(ctx context.Context, mirror *Mirror, accessToken string) error {
	mirror.setLoading(true)
	defer mirror.setLoading(false)

	callCtx, cancel := context.WithTimeout(ctx, controller.config.GatewayTimeout)
	session, err := controller.auth.VerifyAccessToken(callCtx, accessToken)
	cancel()
	if err != nil {
		mirror.clear()
		return classifySession(err)
	}

	user, err := controller.resolver.Resolve(ctx, session.UserID)
	if err != nil {
		mirror.clear()
		return classifySession(err)
	}

	mirror.adopt(user, session)
	controller.rememberDisplayName(ctx, mirror.DeviceID(), user.Name)
	return nil
}

/*
Refresh replaces the session with one issued for refreshToken and
re-resolves the profile. A rejected refresh token ends the session.
*/
func (controller *Controller) Refresh(ctx context.Context, mirror *Mirror, refreshToken string) (*gateway.Session, error) {
	release, ok := mirror.begin(OpRefresh)
	if !ok {
		return nil, errSubmissionInProgress()
	}
	defer release()

	callCtx, cancel := context.WithTimeout(ctx, controller.config.GatewayTimeout)
	session, err := controller.auth.Refresh(callCtx, refreshToken)
	cancel()
	if err != nil {
		classified := classifySession(err)
		if classified.Code == CodeInvalidToken {
			mirror.clear()
			controller.notifier.Notify(ctx, notify.Info("Session expirée", "Veuillez vous reconnecter."))
		}
		return nil, classified
	}

	user, err := controller.resolver.Resolve(ctx, session.UserID)
	if err != nil {
		return nil, classifySession(err)
	}

	mirror.adopt(user, session)
	return session, nil
}

// ConfirmEmail consumes a confirmation token mailed at sign-up.
func (controller *Controller) ConfirmEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return errValidation("token", "Lien de confirmation manquant")
	}

	callCtx, cancel := context.WithTimeout(ctx, controller.config.GatewayTimeout)
	defer cancel()

	if err := controller.auth.ConfirmEmail(callCtx, token); err != nil {
		classified := classifySession(err)
		controller.notifier.Notify(ctx, notify.Error("Confirmation impossible", classified.Message))
		return classified
	}

	controller.notifier.Notify(ctx, notify.Success("Email confirmé", "Vous pouvez maintenant vous connecter."))
	return nil
}

// DisplayName returns the name cached for the device at its last sign-in.
// An unreadable cache yields no name.
func (controller *Controller) DisplayName(ctx context.Context, deviceID string) string {
	var name string
	if _, err := devicestate.LoadJSON(ctx, controller.state, deviceID, constants.DeviceKeyDisplayName, &name); err != nil {
		return ""
	}
	return name
}

// ProfileUpdated brings the mirror and the cached display name in line with
// an edited profile.
func (controller *Controller) ProfileUpdated(ctx context.Context, mirror *Mirror, user *profile.User) {
	mirror.replaceUser(user)
	controller.rememberDisplayName(ctx, mirror.DeviceID(), user.Name)
}

// # Helpers

func (controller *Controller) rememberDisplayName(ctx context.Context, deviceID, name string) {
	if err := devicestate.SaveJSON(ctx, controller.state, deviceID, constants.DeviceKeyDisplayName, name); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "display_name_save_failed", slog.Any("error", err))
	}
}

// takeReturnPath consumes the path remembered by the route guard.
func (controller *Controller) takeReturnPath(ctx context.Context, deviceID string, role sec.UserRole) string {
	var path string
	found, err := devicestate.LoadJSON(ctx, controller.state, deviceID, constants.DeviceKeyReturnPath, &path)
	if err != nil || !found {
		return role.LandingPath()
	}

	if err := controller.state.Delete(ctx, deviceID, constants.DeviceKeyReturnPath); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "return_path_clear_failed", slog.Any("error", err))
	}

	if !IsLocalPath(path) {
		return role.LandingPath()
	}
	return path
}

// revoke ends a gateway session that could not be adopted.
func (controller *Controller) revoke(ctx context.Context, accessToken string) {
	callCtx, cancel := context.WithTimeout(ctx, controller.config.GatewayTimeout)
	defer cancel()
	if err := controller.auth.SignOut(callCtx, accessToken); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "orphan_session_revoke_failed", slog.Any("error", err))
	}
}

// IsLocalPath reports whether path is a same-origin absolute path.
func IsLocalPath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") && !strings.Contains(path, "\\")
}
