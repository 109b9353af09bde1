// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/localeats/internal/services/auth"
	"codeberg.org/oliverandrich/localeats/internal/services/email"
	"codeberg.org/oliverandrich/localeats/internal/services/password"
	"codeberg.org/oliverandrich/localeats/internal/services/session"
	"codeberg.org/oliverandrich/localeats/internal/services/tokens"
	"codeberg.org/oliverandrich/localeats/internal/templates"
	"github.com/labstack/echo/v4"
)

// LoginPage renders the login form.
func (h *Handlers) LoginPage(c echo.Context) error {
	if currentUser(c) != nil {
		return redirect(c, safeNext(c.QueryParam("next")))
	}
	return h.page(c, http.StatusOK, "login", templates.AuthForm{Next: c.QueryParam("next")})
}

// Login checks the credentials and starts a session.
func (h *Handlers) Login(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.FormValue("username")
	next := c.QueryParam("next")

	user, err := h.auth.Login(ctx, username, c.FormValue("password"))
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return h.page(c, http.StatusUnauthorized, "login", templates.AuthForm{
			Username: username,
			Next:     next,
			Errors:   templates.Errors{"form": "error_invalid_credentials"},
		})
	case errors.Is(err, auth.ErrInactive):
		return h.page(c, http.StatusForbidden, "login", templates.AuthForm{
			Username: username,
			Next:     next,
			Errors:   templates.Errors{"form": "error_inactive"},
		})
	case err != nil:
		return err
	}

	cookie, err := h.sessions.Create(user.ID, user.Username)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	h.flash(c, session.FlashSuccess, "login_welcome")
	return redirect(c, safeNext(next))
}

// Logout clears the session.
func (h *Handlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	if user := currentUser(c); user != nil {
		slog.Info("logout", "user_id", user.ID)
	}
	h.flash(c, session.FlashSuccess, "logout_done")
	return redirect(c, "/restaurants")
}

// SignupPage renders the signup form.
func (h *Handlers) SignupPage(c echo.Context) error {
	if currentUser(c) != nil {
		return redirect(c, "/restaurants")
	}
	return h.page(c, http.StatusOK, "signup", templates.AuthForm{})
}

// Signup creates an inactive account and mails its verification link.
func (h *Handlers) Signup(c echo.Context) error {
	params := auth.SignupParams{
		Username:        c.FormValue("username"),
		Email:           c.FormValue("email"),
		Password:        c.FormValue("password"),
		PasswordConfirm: c.FormValue("password_confirm"),
	}

	user, err := h.auth.Signup(c.Request().Context(), params)
	var formErrs auth.FormErrors
	if errors.As(err, &formErrs) {
		return h.page(c, http.StatusUnprocessableEntity, "signup", templates.AuthForm{
			Username: params.Username,
			Email:    params.Email,
			Errors:   templates.Errors(formErrs),
		})
	}
	if err != nil {
		return err
	}

	return h.page(c, http.StatusOK, "signup_done", templates.SentPage{
		Email:    user.Email,
		Validity: email.Validity(c.Request().Context(), h.verification.TTL()),
	})
}

// VerifyEmail activates the account bound to the link and logs it in.
func (h *Handlers) VerifyEmail(c echo.Context) error {
	user, err := h.verification.Consume(c.Request().Context(), c.Param("token"))
	switch {
	case errors.Is(err, tokens.ErrNotFound):
		h.flash(c, session.FlashError, "verify_invalid")
		return redirect(c, "/users/login")
	case errors.Is(err, tokens.ErrExpired):
		h.flash(c, session.FlashError, "verify_expired")
		return redirect(c, "/users/signup")
	case err != nil:
		return err
	}

	cookie, err := h.sessions.Create(user.ID, user.Username)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	h.flash(c, session.FlashSuccess, "verify_success")
	return redirect(c, "/restaurants")
}

// ForgotPasswordPage renders the form asking for the account email.
func (h *Handlers) ForgotPasswordPage(c echo.Context) error {
	return h.page(c, http.StatusOK, "forgot_password", templates.AuthForm{})
}

// ForgotPassword mails a reset link. The confirmation page reads the same
// whether or not the address belongs to an account.
func (h *Handlers) ForgotPassword(c echo.Context) error {
	addr := strings.TrimSpace(c.FormValue("email"))
	if addr == "" {
		return h.page(c, http.StatusUnprocessableEntity, "forgot_password", templates.AuthForm{
			Errors: templates.Errors{"email": "error_email_required"},
		})
	}

	err := h.reset.Issue(c.Request().Context(), addr)
	if errors.Is(err, tokens.ErrSend) {
		h.flash(c, session.FlashError, "send_failed")
		return redirect(c, "/users/forgot-password")
	}
	if err != nil {
		return err
	}

	return h.page(c, http.StatusOK, "forgot_password_done", templates.SentPage{Email: addr})
}

// ResetPasswordPage renders the new-password form for a live reset link.
func (h *Handlers) ResetPasswordPage(c echo.Context) error {
	token := c.Param("token")
	if _, err := h.reset.Validate(c.Request().Context(), token); err != nil {
		return h.resetLinkFailed(c, err)
	}
	return h.page(c, http.StatusOK, "reset_password", templates.ResetForm{Token: token})
}

// ResetPassword sets the new password. The user logs in afterwards.
func (h *Handlers) ResetPassword(c echo.Context) error {
	token := c.Param("token")
	newPassword := c.FormValue("new_password")

	err := h.reset.Complete(c.Request().Context(), token, newPassword, c.FormValue("new_password_confirm"))
	switch {
	case errors.Is(err, tokens.ErrWeakPassword):
		msg := "error_password_short"
		if len(newPassword) > password.MaxBytes {
			msg = "error_password_long"
		}
		return h.page(c, http.StatusUnprocessableEntity, "reset_password", templates.ResetForm{
			Token:  token,
			Errors: templates.Errors{auth.FieldPassword: msg},
		})
	case errors.Is(err, tokens.ErrMismatch):
		return h.page(c, http.StatusUnprocessableEntity, "reset_password", templates.ResetForm{
			Token:  token,
			Errors: templates.Errors{auth.FieldConfirm: "error_password_mismatch"},
		})
	case err != nil:
		return h.resetLinkFailed(c, err)
	}

	h.flash(c, session.FlashSuccess, "reset_done")
	return redirect(c, "/users/login")
}

func (h *Handlers) resetLinkFailed(c echo.Context, err error) error {
	switch {
	case errors.Is(err, tokens.ErrNotFound):
		h.flash(c, session.FlashError, "reset_invalid")
	case errors.Is(err, tokens.ErrExpired):
		h.flash(c, session.FlashError, "reset_expired")
	default:
		return err
	}
	return redirect(c, "/users/forgot-password")
}

// MyPage shows the user's reviews and favorites.
func (h *Handlers) MyPage(c echo.Context) error {
	ctx := c.Request().Context()
	user := currentUser(c)

	reviews, err := h.repo.ListUserReviews(ctx, user.ID)
	if err != nil {
		return err
	}
	favorites, err := h.repo.ListUserFavorites(ctx, user.ID)
	if err != nil {
		return err
	}

	return h.page(c, http.StatusOK, "mypage", templates.MyPage{
		User:      user,
		Reviews:   reviews,
		Favorites: favorites,
	})
}

// EditProfilePage renders the email and password forms.
func (h *Handlers) EditProfilePage(c echo.Context) error {
	return h.page(c, http.StatusOK, "edit_profile", templates.ProfilePage{User: currentUser(c)})
}

// EditProfile updates the email (action=info) or the password (action=password).
// The session survives a password change.
func (h *Handlers) EditProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user := currentUser(c)

	var (
		err     error
		success string
	)
	switch c.FormValue("action") {
	case "info":
		err = h.auth.UpdateEmail(ctx, user.ID, c.FormValue("email"))
		success = "profile_updated"
	case "password":
		err = h.auth.ChangePassword(ctx, user.ID,
			c.FormValue("current_password"),
			c.FormValue("new_password"),
			c.FormValue("new_password_confirm"))
		success = "password_changed"
	default:
		return echo.NewHTTPError(http.StatusBadRequest)
	}

	var formErrs auth.FormErrors
	if errors.As(err, &formErrs) {
		return h.page(c, http.StatusUnprocessableEntity, "edit_profile", templates.ProfilePage{
			User:   user,
			Errors: templates.Errors(formErrs),
		})
	}
	if err != nil {
		return err
	}

	h.flash(c, session.FlashSuccess, success)
	return redirect(c, "/users/mypage")
}

// DeleteAccountPage renders the confirmation form.
func (h *Handlers) DeleteAccountPage(c echo.Context) error {
	return h.page(c, http.StatusOK, "delete_account", templates.ProfilePage{User: currentUser(c)})
}

// DeleteAccount removes the account after a password check and logs out.
func (h *Handlers) DeleteAccount(c echo.Context) error {
	ctx := c.Request().Context()
	user := currentUser(c)

	reviews, err := h.repo.ListUserReviews(ctx, user.ID)
	if err != nil {
		return err
	}

	err = h.auth.DeleteAccount(ctx, user.ID, c.FormValue("password"))
	var formErrs auth.FormErrors
	if errors.As(err, &formErrs) {
		return h.page(c, http.StatusUnprocessableEntity, "delete_account", templates.ProfilePage{
			User:   user,
			Errors: templates.Errors(formErrs),
		})
	}
	if err != nil {
		return err
	}

	for _, r := range reviews {
		h.deleteFile(c, r.PhotoPath)
	}

	c.SetCookie(h.sessions.Clear())
	h.flash(c, session.FlashSuccess, "account_deleted")
	return redirect(c, "/restaurants")
}
