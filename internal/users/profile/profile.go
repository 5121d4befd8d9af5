// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package profile turns an authenticated subject id into the storefront's
domain user.

The [Resolver] is a get-or-create over the profiles table: a subject seen for
the first time gets a profile row built from its registration metadata.
Concurrent resolutions of one subject yield a single row.
*/
package profile

import (
	"net/http"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
)

// DefaultName is given to profiles whose registration carried no name.
const DefaultName = "User"

// User is the domain user consumed by the auth flow and the route guard.
type User struct {
	ID    string       `json:"id"`
	Email string       `json:"email"`
	Role  sec.UserRole `json:"role"`
	Name  string       `json:"name"`
}

// fromRow maps a profiles row. Unknown roles fail closed to buyer.
func fromRow(row *gateway.ProfileRow) *User {
	return &User{
		ID:    row.ID,
		Email: row.Email,
		Role:  sec.ParseRole(row.Role),
		Name:  row.Name,
	}
}

// # Errors

const (
	CodeProvisionFailed    = "PROFILE_PROVISION_FAILED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
)

// ProvisionFailed reports that the profile row could not be created.
func ProvisionFailed(cause error) *apperr.AppError {
	return apperr.New(CodeProvisionFailed, "Votre profil n'a pas pu être créé", http.StatusBadGateway).WithCause(cause)
}

// BackendUnavailable reports a transport failure or an unrecognized backend error.
func BackendUnavailable(cause error) *apperr.AppError {
	return apperr.New(CodeBackendUnavailable, "Le service est momentanément indisponible", http.StatusServiceUnavailable).WithCause(cause)
}
