// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package gateway_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want gateway.Code
	}{
		{"nil", nil, ""},
		{"gateway error", gateway.NewError(gateway.CodeEmailNotConfirmed, "Email not confirmed", nil), gateway.CodeEmailNotConfirmed},
		{"wrapped", fmt.Errorf("sign_in: %w", gateway.NewError(gateway.CodeInvalidCredentials, "bad", nil)), gateway.CodeInvalidCredentials},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), gateway.CodeUnavailable},
		{"deadline inside gateway error", gateway.NewError(gateway.CodeUnknown, "x", context.DeadlineExceeded), gateway.CodeUnavailable},
		{"foreign", errors.New("boom"), gateway.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gateway.CodeOf(tt.err))
		})
	}
}

func TestIsCode(t *testing.T) {
	err := gateway.NewError(gateway.CodeUniqueViolation, "duplicate key", nil)

	assert.True(t, gateway.IsCode(err, gateway.CodeUniqueViolation))
	assert.False(t, gateway.IsCode(err, gateway.CodeNotFound))
	assert.False(t, gateway.IsCode(nil, gateway.CodeUnknown))
}
