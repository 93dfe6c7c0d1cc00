package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const secret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(secret, 7, "admin@wbpower.local", "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateToken(secret, tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "admin@wbpower.local" || claims.Role != "admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := ValidateToken("other-secret", tok); err == nil {
		t.Fatal("token accepted with the wrong secret")
	}
	if _, err := ValidateToken(secret, "not-a-token"); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("s3cret-pass", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestMiddleware(t *testing.T) {
	var seen *Claims
	h := Middleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, header := range []string{"", "Token abc", "Bearer nope"} {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status %d, want 401", header, rec.Code)
		}
		if seen != nil {
			t.Errorf("header %q: handler ran", header)
		}
	}

	tok, _ := GenerateToken(secret, 3, "editor@wbpower.local", "user")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", rec.Code)
	}
	if seen == nil || seen.UserID != 3 {
		t.Fatalf("claims not propagated: %+v", seen)
	}
}
