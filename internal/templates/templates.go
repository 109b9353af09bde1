// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the HTML pages. Pages are html/template files
// embedded in the binary and exposed as templ components.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/localeats/internal/i18n"
	"codeberg.org/oliverandrich/localeats/internal/models"
	"codeberg.org/oliverandrich/localeats/internal/services/session"
	"github.com/a-h/templ"
)

//go:embed layouts/*.html pages/*.html
var files embed.FS

// pages holds one parsed template set per page, each combined with the layout.
// They are never executed directly; Page renders a clone with request-bound funcs.
var pages = mustParse()

// placeholderFuncs declares every template func; Page rebinds them per request.
func placeholderFuncs() template.FuncMap {
	return funcs(context.Background())
}

func funcs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"t": i18n.Func(ctx),
		"tdata": func(messageID string, pairs ...any) string {
			data := make(map[string]any, len(pairs)/2)
			for i := 0; i+1 < len(pairs); i += 2 {
				data[fmt.Sprint(pairs[i])] = pairs[i+1]
			}
			return i18n.TData(ctx, messageID, data)
		},
		"tplural": func(messageID string, count any) string {
			n, _ := strconv.Atoi(fmt.Sprint(count))
			return i18n.TPlural(ctx, messageID, n)
		},
		"csrf":   func() string { return CSRFToken(ctx) },
		"locale": func() string { return Locale(ctx) },
		"css":    func() string { return CSSPath(ctx) },
		"js":     func() string { return JSPath(ctx) },
		"user":   func() *models.User { return GetUser(ctx) },
		"flash":  func() *session.Flash { return Flash(ctx) },
		"media":  func(key string) string { return MediaURL(ctx, key) },
		"rating": FormatRating,
		"date":   FormatDate,
		"id":     func(id int64) string { return strconv.FormatInt(id, 10) },
		"seq": func(from, to int) []int {
			var s []int
			for i := from; i <= to; i++ {
				s = append(s, i)
			}
			return s
		},
	}
}

func mustParse() map[string]*template.Template {
	names, err := fs.Glob(files, "pages/*.html")
	if err != nil {
		panic(err)
	}

	parsed := make(map[string]*template.Template, len(names))
	for _, file := range names {
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(placeholderFuncs()).ParseFS(files, "layouts/base.html", file)
		if err != nil {
			panic(fmt.Sprintf("parse template %s: %v", name, err))
		}
		parsed[name] = t
	}
	return parsed
}

// Page returns the named page rendered with data inside the base layout.
func Page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base, ok := pages[name]
		if !ok {
			return fmt.Errorf("unknown page %q", name)
		}

		t, err := base.Clone()
		if err != nil {
			return fmt.Errorf("clone template %s: %w", name, err)
		}
		t = t.Funcs(funcs(ctx)).Lookup("base")

		return templ.FromGoHTML(t, data).Render(ctx, w)
	})
}

// Has reports whether a page with that name exists.
func Has(name string) bool {
	_, ok := pages[name]
	return ok
}
