// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next     string
		expected string
	}{
		{"", "/restaurants"},
		{"/favorites", "/favorites"},
		{"/restaurants/3?tab=reviews", "/restaurants/3?tab=reviews"},
		{"https://evil.example/", "/restaurants"},
		{"//evil.example", "/restaurants"},
		{`/\evil.example`, "/restaurants"},
		{"relative/path", "/restaurants"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.expected, safeNext(tt.next))
		})
	}
}
