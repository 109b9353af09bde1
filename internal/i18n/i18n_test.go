// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"os"
	"testing"

	"codeberg.org/oliverandrich/localeats/internal/i18n"
	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// Contexts bound to each language, set up once the bundle is loaded.
var en, ko context.Context

func TestMain(m *testing.M) {
	if err := i18n.Init(); err != nil {
		panic(err)
	}
	en = i18n.WithLocale(context.Background(), language.English)
	ko = i18n.WithLocale(context.Background(), language.Korean)
	os.Exit(m.Run())
}

func TestSupported(t *testing.T) {
	tags := i18n.Supported()

	require.Len(t, tags, 2)
	assert.Equal(t, language.English, tags[0])
	assert.Contains(t, tags, language.Korean)
}

func TestT(t *testing.T) {
	assert.Equal(t, "Log in", i18n.T(en, "nav_login"))
	assert.Equal(t, "로그인", i18n.T(ko, "nav_login"))
}

func TestT_UnknownKey(t *testing.T) {
	assert.Equal(t, "no_such_message", i18n.T(en, "no_such_message"))
}

func TestT_NoLocale(t *testing.T) {
	assert.Equal(t, "Log in", i18n.T(context.Background(), "nav_login"))
}

func TestTData(t *testing.T) {
	data := map[string]any{"Date": "2025-06-01"}

	assert.Equal(t, "Member since 2025-06-01", i18n.TData(en, "member_since", data))
	assert.Equal(t, "2025-06-01 가입", i18n.TData(ko, "member_since", data))
}

func TestTPlural(t *testing.T) {
	assert.Equal(t, "1 review", i18n.TPlural(en, "review_count", 1))
	assert.Equal(t, "3 reviews", i18n.TPlural(en, "review_count", 3))
	assert.Equal(t, "리뷰 1개", i18n.TPlural(ko, "review_count", 1))
}

func TestFunc(t *testing.T) {
	tr := i18n.Func(ko)

	assert.Equal(t, "로그인", tr("nav_login"))
}

// Every plain English message must have a Korean counterpart.
func TestKoreanIsComplete(t *testing.T) {
	var messages map[string]any
	_, err := toml.DecodeFile("translations/active.en.toml", &messages)
	require.NoError(t, err)

	for id, v := range messages {
		if _, plain := v.(string); !plain || id == "app_name" {
			continue
		}
		assert.NotEqual(t, i18n.T(en, id), i18n.T(ko, id), id)
	}
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		acceptLanguage string
		expected       language.Tag
	}{
		{"en", language.English},
		{"en-US", language.English},
		{"ko", language.Korean},
		{"ko-KR", language.Korean},
		{"fr", language.English},
		{"", language.English},
		{"not a header;;", language.English},
		{"ko, en;q=0.9", language.Korean},
		{"en, ko;q=0.9", language.English},
		{"fr, ko;q=0.5", language.Korean},
	}

	for _, tt := range tests {
		t.Run(tt.acceptLanguage, func(t *testing.T) {
			assert.Equal(t, tt.expected, i18n.MatchLanguage(tt.acceptLanguage))
		})
	}
}

func TestGetLocale(t *testing.T) {
	assert.Equal(t, "ko", i18n.GetLocale(ko))
	assert.Equal(t, "en", i18n.GetLocale(en))
	assert.Equal(t, "en", i18n.GetLocale(context.Background()))
}
