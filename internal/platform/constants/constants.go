// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuer and cookie names.
  - Navigation: landing paths used by the route guard and the auth flow.
  - Device State: key names of the per-device persisted values.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "souk-bazaar-api"
	AppVersion = "0.3.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// MaxUploadBytes caps product image uploads.
	MaxUploadBytes = 5 << 20
)

// # Rate Limiting

const (
	DefaultRateLimitRPS      = 50.0
	DefaultRateLimitBurst    = 100
	RateLimitCleanupInterval = 1 * time.Minute
	RateLimitClientTTL       = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in access tokens.
	AuthIssuer = "souk-bazaar.ma"

	// AccessTokenCookieName carries the bearer token for browser clients.
	AccessTokenCookieName = "souk_access"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "souk_refresh"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"

	// DeviceCookieName identifies the browser whose state the server mirrors.
	DeviceCookieName = "souk_device"

	// DeviceCookieMaxAge keeps the device id for a year.
	DeviceCookieMaxAge = 365 * 24 * 60 * 60
)

// # Navigation

const (
	PathLogin           = "/login"
	PathSellerDashboard = "/dashboard"
	PathProducts        = "/products"
	PathAccount         = "/account"

	// QueryNext is the query parameter carrying the originally requested path.
	QueryNext = "next"
)

// # Device State Keys

const (
	DeviceKeyCart        = "cart"
	DeviceKeyWishlist    = "wishlist"
	DeviceKeyReturnPath  = "return_path"
	DeviceKeyDisplayName = "display_name"

	// DeviceIdleTTL is how long a device's live cart, wishlist and session
	// mirror stay in memory without a request.
	DeviceIdleTTL = 30 * time.Minute

	// DeviceSweepInterval is how often idle devices are evicted.
	DeviceSweepInterval = time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
	HeaderLocation      = "Location"
)

// # JSON Field Identifiers

const (
	FieldData          = "data"
	FieldError         = "error"
	FieldCode          = "code"
	FieldMessage       = "message"
	FieldStatus        = "status"
	FieldRedirect      = "redirect"
	FieldNotifications = "notifications"
)

// # Redis Prefixes

const (
	RedisPrefixDevice       = "device:"
	RedisPrefixConfirmToken = "auth:confirm_token:"
)
