package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marcopiovanello/yt-fetch/server/config"
	"github.com/marcopiovanello/yt-fetch/server/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	conf := config.Instance()
	conf.Authentication.Username = "admin"
	conf.Authentication.PasswordHash = string(hash)
	conf.Authentication.JWTSecret = "secret"

	tests := []struct {
		body string
		want int
	}{
		{`{"username":"admin","password":"hunter2"}`, http.StatusOK},
		{`{"username":"admin","password":"wrong"}`, http.StatusUnauthorized},
		{`{"username":"root","password":"hunter2"}`, http.StatusUnauthorized},
		{`not json`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body)))

		if w.Code != tt.want {
			t.Errorf("%s: got %d, want %d", tt.body, w.Code, tt.want)
			continue
		}

		if tt.want == http.StatusOK {
			cookies := w.Result().Cookies()
			if len(cookies) != 1 || cookies[0].Name != auth.CookieName {
				t.Fatalf("expected the session cookie, got %v", cookies)
			}
			if _, err := auth.Parse([]byte("secret"), cookies[0].Value); err != nil {
				t.Fatalf("issued token is invalid: %v", err)
			}
		}
	}
}
