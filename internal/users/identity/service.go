// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/events"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/mailer"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
	"github.com/abbassi001/souk-bazaar-hub/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs and verifies access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, email, role, sessionID string, timeToLive time.Duration) (string, error)
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Service implements [gateway.AuthService].
type Service struct {
	accounts      AccountRepository
	sessions      SessionRepository
	confirmTokens ConfirmTokenRepository
	tokens        TokenProvider
	mail          mailer.Mailer
	publisher     events.Publisher
	now           func() time.Time
}

var _ gateway.AuthService = (*Service)(nil)

// NewService constructs the identity [Service].
func NewService(
	accounts AccountRepository,
	sessions SessionRepository,
	confirmTokens ConfirmTokenRepository,
	tokens TokenProvider,
	mail mailer.Mailer,
	publisher events.Publisher,
) *Service {
	return &Service{
		accounts:      accounts,
		sessions:      sessions,
		confirmTokens: confirmTokens,
		tokens:        tokens,
		mail:          mail,
		publisher:     publisher,
		now:           time.Now,
	}
}

// SignedUpEvent is published under [events.SignedUp].
type SignedUpEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// # Registration Flow

/*
SignUp registers an unconfirmed account and mails the confirmation link.

Returns:
  - *gateway.AuthUser: the created identity
  - error: CodeInvalidEmail, CodeUserAlreadyRegistered or a backend failure
*/
func (service *Service) SignUp(ctx context.Context, req gateway.SignUpRequest) (*gateway.AuthUser, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if new(validate.Validator).Email("email", email).HasErrors() {
		return nil, gateway.NewError(gateway.CodeInvalidEmail, "Invalid email address", nil)
	}

	_, err := service.accounts.FindByEmail(ctx, email)
	if err == nil {
		return nil, gateway.NewError(gateway.CodeUserAlreadyRegistered, "User already registered", nil)
	}
	if !gateway.IsCode(err, gateway.CodeNotFound) {
		return nil, backendError("Account lookup failed", err)
	}

	passwordHash, err := sec.HashPassword(req.Password)
	if err != nil {
		return nil, gateway.NewError(gateway.CodeUnknown, "Password hashing failed", err)
	}

	account := &Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(req.Metadata.Name),
		Role:         sec.ParseRole(req.Metadata.Role),
	}

	if err := service.accounts.Create(ctx, account); err != nil {
		return nil, backendError("Account creation failed", err)
	}

	service.sendConfirmation(ctx, account, req.RedirectTo)

	_ = service.publisher.Publish(ctx, events.SignedUp, SignedUpEvent{
		UserID: account.ID,
		Email:  account.Email,
		Role:   string(account.Role),
	})

	return toAuthUser(account), nil
}

// sendConfirmation stores a confirmation token and mails the link. Failures
// are logged; the account exists either way.
func (service *Service) sendConfirmation(ctx context.Context, account *Account, redirectTo string) {
	logger := ctxutil.GetLogger(ctx)

	token, err := sec.RandomToken(ConfirmTokenLength)
	if err == nil {
		err = service.confirmTokens.Set(ctx, token, account.ID, ConfirmTokenTTL)
	}
	if err != nil {
		logger.ErrorContext(ctx, "confirm_token_issue_failed", slog.String("user_id", account.ID), slog.Any("error", err))
		return
	}

	link, err := confirmationLink(redirectTo, token)
	if err != nil {
		logger.ErrorContext(ctx, "confirm_link_invalid", slog.String("redirect_to", redirectTo), slog.Any("error", err))
		return
	}

	message := mailer.Message{
		To:      account.Email,
		Subject: "Confirmez votre adresse email",
		Text:    fmt.Sprintf("Bienvenue sur Souk Bazaar, %s !\n\nConfirmez votre adresse email :\n%s\n", account.Name, link),
	}
	if err := service.mail.Send(ctx, message); err != nil {
		logger.ErrorContext(ctx, "confirmation_mail_failed", slog.String("user_id", account.ID), slog.Any("error", err))
	}
}

func confirmationLink(redirectTo, token string) (string, error) {
	target, err := url.Parse(redirectTo)
	if err != nil {
		return "", err
	}
	query := target.Query()
	query.Set(ConfirmTokenQuery, token)
	target.RawQuery = query.Encode()
	return target.String(), nil
}

// ConfirmEmail consumes a confirmation token.
func (service *Service) ConfirmEmail(ctx context.Context, token string) error {
	userID, err := service.confirmTokens.Get(ctx, token)
	if err != nil {
		return backendError("Confirmation lookup failed", err)
	}

	if err := service.accounts.MarkConfirmed(ctx, userID); err != nil {
		return backendError("Confirmation failed", err)
	}

	_ = service.confirmTokens.Delete(ctx, token)
	return nil
}

// # Authentication Flow

/*
SignInWithPassword verifies credentials and opens a session.

The password is checked before the confirmation state so an unconfirmed
account is only revealed to someone who knows its password.
*/
func (service *Service) SignInWithPassword(ctx context.Context, email, password string) (*gateway.Session, error) {
	account, err := service.accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if gateway.IsCode(err, gateway.CodeNotFound) {
			return nil, gateway.NewError(gateway.CodeInvalidCredentials, "Invalid login credentials", nil)
		}
		return nil, backendError("Account lookup failed", err)
	}

	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, gateway.NewError(gateway.CodeInvalidCredentials, "Invalid login credentials", nil)
	}

	if !account.IsConfirmed {
		return nil, gateway.NewError(gateway.CodeEmailNotConfirmed, "Email not confirmed", nil)
	}

	return service.openSession(ctx, account)
}

func (service *Service) openSession(ctx context.Context, account *Account) (*gateway.Session, error) {
	refreshToken, err := sec.RandomToken(RefreshTokenLength)
	if err != nil {
		return nil, gateway.NewError(gateway.CodeUnknown, "Refresh token generation failed", err)
	}

	now := service.now()
	session := &Session{
		ID:        uuid.New(),
		UserID:    account.ID,
		TokenHash: sec.HashToken(refreshToken),
		ExpiresAt: now.Add(RefreshTokenTTL),
		CreatedAt: now,
	}
	if err := service.sessions.Create(ctx, session); err != nil {
		return nil, backendError("Session creation failed", err)
	}

	accessToken, err := service.tokens.GenerateAccessToken(account.ID, account.Email, string(account.Role), session.ID, AccessTokenTTL)
	if err != nil {
		return nil, gateway.NewError(gateway.CodeUnknown, "Access token signing failed", err)
	}

	return &gateway.Session{
		UserID:       account.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(AccessTokenTTL),
	}, nil
}

// SignOut revokes the session the access token belongs to.
func (service *Service) SignOut(ctx context.Context, accessToken string) error {
	claims, err := service.tokens.VerifyToken(accessToken)
	if err != nil {
		return gateway.NewError(gateway.CodeInvalidToken, "Invalid or expired token", err)
	}

	if err := service.sessions.Revoke(ctx, claims.SessionID()); err != nil {
		return backendError("Session revocation failed", err)
	}
	return nil
}

// # Session Management

// VerifyAccessToken checks the signature and that the session is still live.
func (service *Service) VerifyAccessToken(ctx context.Context, accessToken string) (*gateway.Session, error) {
	claims, err := service.tokens.VerifyToken(accessToken)
	if err != nil {
		return nil, gateway.NewError(gateway.CodeInvalidToken, "Invalid or expired token", err)
	}

	session, err := service.sessions.FindByID(ctx, claims.SessionID())
	if err != nil {
		if gateway.IsCode(err, gateway.CodeNotFound) {
			return nil, gateway.NewError(gateway.CodeInvalidToken, "Session not found", nil)
		}
		return nil, backendError("Session lookup failed", err)
	}
	if !session.Active(service.now()) {
		return nil, gateway.NewError(gateway.CodeInvalidToken, "Session revoked or expired", nil)
	}

	result := &gateway.Session{UserID: claims.UserID, AccessToken: accessToken}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}

/*
Refresh implements refresh token rotation: the presented session is revoked
and a new one is opened, so a refresh token works exactly once.
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*gateway.Session, error) {
	session, err := service.sessions.FindByTokenHash(ctx, sec.HashToken(refreshToken))
	if err != nil {
		if gateway.IsCode(err, gateway.CodeNotFound) {
			return nil, gateway.NewError(gateway.CodeInvalidToken, "Invalid or expired refresh token", nil)
		}
		return nil, backendError("Session lookup failed", err)
	}
	if !session.Active(service.now()) {
		return nil, gateway.NewError(gateway.CodeInvalidToken, "Invalid or expired refresh token", nil)
	}

	if err := service.sessions.Revoke(ctx, session.ID); err != nil {
		return nil, backendError("Session revocation failed", err)
	}

	account, err := service.accounts.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, backendError("Account lookup failed", err)
	}

	return service.openSession(ctx, account)
}

// GetUser returns the auth record of userID.
func (service *Service) GetUser(ctx context.Context, userID string) (*gateway.AuthUser, error) {
	account, err := service.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, backendError("Account lookup failed", err)
	}
	return toAuthUser(account), nil
}

// # Helpers

func toAuthUser(account *Account) *gateway.AuthUser {
	return &gateway.AuthUser{
		ID:    account.ID,
		Email: account.Email,
		Metadata: gateway.UserMetadata{
			Name: account.Name,
			Role: string(account.Role),
		},
		EmailConfirmed: account.IsConfirmed,
		CreatedAt:      account.CreatedAt,
	}
}

// backendError passes gateway errors through and classifies anything else.
func backendError(message string, err error) error {
	var gatewayError *gateway.Error
	if errors.As(err, &gatewayError) {
		return err
	}

	var connectError *pgconn.ConnectError
	var netError net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.As(err, &connectError) || errors.As(err, &netError) {
		return gateway.NewError(gateway.CodeUnavailable, message, err)
	}

	return gateway.NewError(gateway.CodeUnknown, message, err)
}
