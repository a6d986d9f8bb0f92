package user

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/marcopiovanello/yt-fetch/server/config"
	"github.com/marcopiovanello/yt-fetch/server/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conf := config.Instance().Authentication

	if req.Username != conf.Username ||
		bcrypt.CompareHashAndPassword([]byte(conf.PasswordHash), []byte(req.Password)) != nil {
		slog.Warn("failed login attempt", slog.String("username", req.Username))
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	expiresAt := time.Now().Add(auth.TokenTTL)

	token, err := auth.Issue([]byte(conf.JWTSecret), req.Username, auth.TokenTTL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	auth.SetCookie(w, token, expiresAt)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
