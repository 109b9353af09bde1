// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import (
	"net/http"
)

const flashCookieName = "_flash"

// Flash levels.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a message shown once on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

// SetFlash stores a flash message for the next request.
func (m *Manager) SetFlash(w http.ResponseWriter, level, message string) error {
	value, err := m.codec.Encode(flashCookieName, Flash{Level: level, Message: message})
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(flashCookieName, value, 300))
	return nil
}

// PopFlash returns the pending flash message and clears it.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, m.cookie(flashCookieName, "", -1))

	var f Flash
	if err := m.codec.Decode(flashCookieName, cookie.Value, &f); err != nil {
		return nil
	}
	return &f
}
