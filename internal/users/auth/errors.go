// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package auth

import (
	"net/http"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

// # Error Taxonomy

const (
	CodeDuplicateAccount     = "DUPLICATE_ACCOUNT"
	CodeInvalidEmail         = "INVALID_EMAIL"
	CodeEmailNotConfirmed    = "EMAIL_NOT_CONFIRMED"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeUnknownSignup        = "UNKNOWN_SIGNUP_ERROR"
	CodeUnknownSignin        = "UNKNOWN_SIGNIN_ERROR"
	CodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
	CodeInvalidToken         = "INVALID_TOKEN"
)

// # Notification Titles

const (
	titleSignUpFailed  = "Erreur d'inscription"
	titleSignInFailed  = "Erreur de connexion"
	titleSignOutFailed = "Erreur de déconnexion"
	titleNotConfirmed  = "Email non confirmé"
)

func errDuplicateAccount(cause error) *apperr.AppError {
	return apperr.New(CodeDuplicateAccount,
		"Cet email est déjà utilisé. Veuillez vous connecter ou utiliser un autre email.",
		http.StatusConflict).WithCause(cause)
}

func errInvalidEmail(cause error) *apperr.AppError {
	return apperr.New(CodeInvalidEmail,
		"Email invalide. Veuillez vérifier votre adresse email.",
		http.StatusBadRequest).WithCause(cause)
}

func errUnknownSignup(cause error) *apperr.AppError {
	return apperr.New(CodeUnknownSignup,
		"Une erreur est survenue lors de l'inscription.",
		http.StatusBadGateway).WithCause(cause)
}

func errEmailNotConfirmed(cause error) *apperr.AppError {
	return apperr.New(CodeEmailNotConfirmed,
		"Veuillez vérifier votre email et cliquer sur le lien de confirmation.",
		http.StatusForbidden).WithCause(cause)
}

func errInvalidCredentials(cause error) *apperr.AppError {
	return apperr.New(CodeInvalidCredentials,
		"Email ou mot de passe incorrect.",
		http.StatusUnauthorized).WithCause(cause)
}

func errUnknownSignin(cause error) *apperr.AppError {
	return apperr.New(CodeUnknownSignin,
		"Une erreur est survenue lors de la connexion.",
		http.StatusBadGateway).WithCause(cause)
}

func errSubmissionInProgress() *apperr.AppError {
	return apperr.New(CodeSubmissionInProgress,
		"Une opération est déjà en cours. Veuillez patienter.",
		http.StatusConflict)
}

func errInvalidToken(cause error) *apperr.AppError {
	return apperr.New(CodeInvalidToken,
		"Lien ou session invalide ou expiré.",
		http.StatusUnauthorized).WithCause(cause)
}

func errValidation(field, message string) *apperr.AppError {
	return apperr.ValidationError(message, apperr.FieldError{Field: field, Message: message})
}

// # Classification

// classifySignUp maps a gateway sign-up failure. Only codes are inspected.
func classifySignUp(err error) *apperr.AppError {
	switch gateway.CodeOf(err) {
	case gateway.CodeUserAlreadyRegistered:
		return errDuplicateAccount(err)
	case gateway.CodeInvalidEmail:
		return errInvalidEmail(err)
	case gateway.CodeUnavailable:
		return profile.BackendUnavailable(err)
	default:
		return errUnknownSignup(err)
	}
}

// classifySignIn maps a gateway sign-in failure.
func classifySignIn(err error) *apperr.AppError {
	switch gateway.CodeOf(err) {
	case gateway.CodeEmailNotConfirmed:
		return errEmailNotConfirmed(err)
	case gateway.CodeInvalidCredentials:
		return errInvalidCredentials(err)
	case gateway.CodeUnavailable:
		return profile.BackendUnavailable(err)
	default:
		return errUnknownSignin(err)
	}
}

// classifySession maps a restore, refresh or confirmation failure.
func classifySession(err error) *apperr.AppError {
	switch gateway.CodeOf(err) {
	case gateway.CodeInvalidToken, gateway.CodeNotFound:
		return errInvalidToken(err)
	default:
		if appError := apperr.As(err); appError != nil {
			return appError
		}
		return profile.BackendUnavailable(err)
	}
}
