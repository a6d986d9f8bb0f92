package auth

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	secret := []byte("secret")

	token, err := Issue(secret, "admin", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := Parse(secret, token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "admin" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}

	if _, err := Parse([]byte("other"), token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}

	expired, _ := Issue(secret, "admin", -time.Minute)
	if _, err := Parse(secret, expired); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if _, err := FromRequest(r); err != ErrNoToken {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}

	r.Header.Set("Authorization", "Bearer abc")
	if tok, _ := FromRequest(r); tok != "abc" {
		t.Fatalf("unexpected token %q", tok)
	}

	w := httptest.NewRecorder()
	SetCookie(w, "fromcookie", time.Now().Add(time.Hour))
	r.AddCookie(w.Result().Cookies()[0])

	if tok, _ := FromRequest(r); tok != "fromcookie" {
		t.Fatalf("cookie should win, got %q", tok)
	}
}
