// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToPgx5DSN(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/souk":   "pgx5://u:p@db:5432/souk",
		"postgresql://u:p@db:5432/souk": "pgx5://u:p@db:5432/souk",
		"pgx5://u:p@db:5432/souk":       "pgx5://u:p@db:5432/souk",
		"host=db user=u":                "host=db user=u",
	}

	for input, want := range tests {
		assert.Equal(t, want, convertToPgx5DSN(input))
	}
}
