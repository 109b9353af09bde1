// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package htmx provides request parsing and response helpers for htmx.
package htmx

import (
	"net/http"
)

// Request headers sent by htmx.
const (
	HeaderRequest        = "HX-Request"
	HeaderBoosted        = "HX-Boosted"
	HeaderCurrentURL     = "HX-Current-URL"
	HeaderHistoryRestore = "HX-History-Restore-Request"
	HeaderTarget         = "HX-Target"
)

// Response headers understood by htmx.
const (
	HeaderRedirect        = "HX-Redirect"
	HeaderTriggerResponse = "HX-Trigger"
)

// Request contains information about an htmx request.
type Request struct { //nolint:govet // fieldalignment not critical
	IsHtmx           bool
	IsBoosted        bool
	IsHistoryRestore bool
	CurrentURL       string
	Target           string
}

// ParseRequest extracts htmx information from request headers.
func ParseRequest(r *http.Request) *Request {
	return &Request{
		IsHtmx:           r.Header.Get(HeaderRequest) == "true",
		IsBoosted:        r.Header.Get(HeaderBoosted) == "true",
		IsHistoryRestore: r.Header.Get(HeaderHistoryRestore) == "true",
		CurrentURL:       r.Header.Get(HeaderCurrentURL),
		Target:           r.Header.Get(HeaderTarget),
	}
}

// Redirect sends the client to url. htmx requests get an HX-Redirect header,
// since htmx follows 3xx responses inside the swap target.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get(HeaderRequest) == "true" {
		w.Header().Set(HeaderRedirect, url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// Trigger sets an HX-Trigger header firing event on the client.
func Trigger(w http.ResponseWriter, event string) {
	w.Header().Set(HeaderTriggerResponse, event)
}
