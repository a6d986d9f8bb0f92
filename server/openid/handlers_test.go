package openid

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		c         claims
		whitelist []string
		want      bool
	}{
		{claims{Email: "a@b.c", EmailVerified: true}, nil, true},
		{claims{Email: "a@b.c", EmailVerified: false}, nil, false},
		{claims{Email: "", EmailVerified: true}, nil, false},
		{claims{Email: "a@b.c", EmailVerified: true}, []string{"a@b.c"}, true},
		{claims{Email: "x@b.c", EmailVerified: true}, []string{"a@b.c"}, false},
	}

	for _, tt := range tests {
		if got := allowed(tt.c, tt.whitelist); got != tt.want {
			t.Errorf("allowed(%+v, %v) = %v, want %v", tt.c, tt.whitelist, got, tt.want)
		}
	}
}

func TestLoginNotConfigured(t *testing.T) {
	w := httptest.NewRecorder()
	Login(w, httptest.NewRequest(http.MethodGet, "/auth/openid/login", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
