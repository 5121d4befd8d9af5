// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

// Package migrations embeds the numbered SQL migrations into the binary.
package migrations

import "embed"

// FS holds every *.sql file of this directory.
//
//go:embed *.sql
var FS embed.FS
