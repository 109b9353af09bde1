// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"bytes"
	"testing"

	"codeberg.org/oliverandrich/localeats/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	err := printStatus(&buf, []database.MigrationState{
		{Version: 1, Path: "00001_create_users.sql", Applied: true},
		{Version: 2, Path: "00002_create_tokens.sql"},
	})

	require.NoError(t, err)
	assert.Equal(t, "00001  applied  00001_create_users.sql\n00002  pending  00002_create_tokens.sql\n", buf.String())
}
