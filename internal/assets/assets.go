// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

//go:build !dev

// Package assets provides embedded static assets with content-versioned URLs.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
)

//go:embed static
var staticFS embed.FS

const (
	cssFile = "static/css/styles.css"
	jsFile  = "static/js/app.js"
)

var (
	cssPath = "/" + cssFile
	jsPath  = "/" + jsFile
)

func init() {
	cssPath = versioned(cssFile)
	jsPath = versioned(jsFile)
	slog.Debug("loaded asset paths", "css", cssPath, "js", jsPath)
}

// versioned appends a short content hash so browsers can cache forever.
func versioned(name string) string {
	data, err := fs.ReadFile(staticFS, name)
	if err != nil {
		slog.Error("failed to read embedded asset", "file", name, "error", err)
		return "/" + name
	}
	sum := sha256.Sum256(data)
	return "/" + name + "?v=" + hex.EncodeToString(sum[:4])
}

// CSSPath returns the path to the main CSS file.
func CSSPath() string {
	return cssPath
}

// JSPath returns the path to the JS file.
func JSPath() string {
	return jsPath
}

// FileServer returns an http.Handler that serves embedded static files.
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("failed to create sub filesystem: " + err.Error())
	}
	return http.FileServer(http.FS(sub))
}
