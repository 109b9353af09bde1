// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package i18n translates UI strings. Messages live in embedded TOML files,
// one per language, named active.<lang>.toml.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/*.toml
var translationFS embed.FS

// Default is used when no requested language is supported.
var Default = language.English

var (
	bundle    = i18n.NewBundle(Default)
	supported = []language.Tag{Default}
	matcher   = language.NewMatcher(supported)
)

type localeKey struct{}

type locale struct {
	tag       language.Tag
	localizer *i18n.Localizer
}

// Init loads every embedded translation file.
func Init() error {
	b := i18n.NewBundle(Default)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(translationFS, "translations/active.*.toml")
	if err != nil {
		return err
	}
	for _, file := range files {
		if _, err := b.LoadMessageFileFS(translationFS, file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	bundle = b
	supported = b.LanguageTags()
	matcher = language.NewMatcher(supported)
	return nil
}

// Supported lists the loaded languages, Default first.
func Supported() []language.Tag {
	return supported
}

// WithLocale binds a localizer for lang to ctx.
func WithLocale(ctx context.Context, lang language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, &locale{
		tag:       lang,
		localizer: i18n.NewLocalizer(bundle, lang.String()),
	})
}

// GetLocale returns the language code bound to ctx.
func GetLocale(ctx context.Context) string {
	if l, ok := ctx.Value(localeKey{}).(*locale); ok {
		return l.tag.String()
	}
	return Default.String()
}

// T translates a message by ID. Unknown IDs are returned unchanged.
func T(ctx context.Context, messageID string) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: messageID})
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	return localize(ctx, &i18n.LocalizeConfig{MessageID: messageID, TemplateData: data})
}

// TPlural picks the plural form for count. The count is available as {{.Count}}.
func TPlural(ctx context.Context, messageID string, count int) string {
	return localize(ctx, &i18n.LocalizeConfig{
		MessageID:    messageID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

// Func returns a translator bound to ctx.
func Func(ctx context.Context) func(messageID string) string {
	return func(messageID string) string {
		return T(ctx, messageID)
	}
}

// MatchLanguage picks the supported language closest to an Accept-Language header.
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

func localize(ctx context.Context, cfg *i18n.LocalizeConfig) string {
	localizer := i18n.NewLocalizer(bundle, Default.String())
	if l, ok := ctx.Value(localeKey{}).(*locale); ok {
		localizer = l.localizer
	}
	msg, err := localizer.Localize(cfg)
	if err != nil {
		return cfg.MessageID
	}
	return msg
}
