// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package sec

import (
	"strings"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
)

// # User Roles

// UserRole is the marketplace side an account acts on.
type UserRole string

const (
	// Browses, fills a cart and a wishlist, checks out.
	RoleBuyer UserRole = "buyer"

	// Manages a product listing through the dashboard.
	RoleSeller UserRole = "seller"
)

// ParseRole normalises case and surrounding whitespace.
// Anything that is not a known role becomes [RoleBuyer].
func ParseRole(raw string) UserRole {
	switch UserRole(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleSeller:
		return RoleSeller
	default:
		return RoleBuyer
	}
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// LandingPath is the page a user of this role lands on.
func (r UserRole) LandingPath() string {
	if r == RoleSeller {
		return constants.PathSellerDashboard
	}
	return constants.PathProducts
}
