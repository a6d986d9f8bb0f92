package openid

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/marcopiovanello/yt-fetch/server/config"
	"github.com/marcopiovanello/yt-fetch/server/internal/auth"
)

const stateCookie = "oauth-state"

type claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	if verifier == nil {
		http.Error(w, "openid is not configured", http.StatusNotFound)
		return
	}

	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		HttpOnly: true,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, oauth2Config.AuthCodeURL(state), http.StatusFound)
}

func SignIn(w http.ResponseWriter, r *http.Request) {
	if verifier == nil {
		http.Error(w, "openid is not configured", http.StatusNotFound)
		return
	}

	state, err := r.Cookie(stateCookie)
	if err != nil || r.URL.Query().Get("state") != state.Value {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	token, err := oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		http.Error(w, "missing id_token", http.StatusBadRequest)
		return
	}

	idToken, err := verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var c claims
	if err := idToken.Claims(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conf := config.Instance()

	if !allowed(c, conf.OpenId.EmailWhitelist) {
		slog.Warn("openid login rejected", slog.String("email", c.Email))
		http.Error(w, "email not allowed", http.StatusForbidden)
		return
	}

	session, err := auth.Issue([]byte(conf.Authentication.JWTSecret), c.Email, auth.TokenTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	auth.SetCookie(w, session, time.Now().Add(auth.TokenTTL))
	http.Redirect(w, r, conf.Server.BaseURL+"/", http.StatusFound)
}

func Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w)
	http.Redirect(w, r, config.Instance().Server.BaseURL+"/", http.StatusFound)
}

// An empty whitelist accepts every verified email.
func allowed(c claims, whitelist []string) bool {
	if c.Email == "" || !c.EmailVerified {
		return false
	}
	return len(whitelist) == 0 || slices.Contains(whitelist, c.Email)
}
