// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
)

/*
TestAppError_CodeThroughWrapping verifies codes survive fmt.Errorf wrapping.
*/
func TestAppError_CodeThroughWrapping(t *testing.T) {
	base := apperr.Forbidden("sellers only")
	wrapped := fmt.Errorf("dashboard_lookup_failed: %w", base)

	assert.Equal(t, apperr.CodeForbidden, apperr.Code(wrapped))
	assert.True(t, apperr.Is(wrapped, apperr.CodeForbidden))
	assert.False(t, apperr.Is(nil, apperr.CodeForbidden))
	assert.Equal(t, "", apperr.Code(errors.New("plain")))
}

/*
TestAppError_WithCause verifies the cause is attached to a copy only.
*/
func TestAppError_WithCause(t *testing.T) {
	base := apperr.New("EMAIL_NOT_CONFIRMED", "Email not confirmed", http.StatusForbidden)
	cause := errors.New("provider said no")

	withCause := base.WithCause(cause)

	require.NotSame(t, base, withCause)
	assert.Nil(t, base.Cause)
	assert.ErrorIs(t, withCause, cause)
	assert.Equal(t, base.Code, withCause.Code)
}

/*
TestAppError_Internal hides the cause from the message.
*/
func TestAppError_Internal(t *testing.T) {
	err := apperr.Internal(errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.NotContains(t, err.Error(), "relation")
}
