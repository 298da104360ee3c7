package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	tok, exp, err := GenerateToken(42, "freelancer", "s3cret", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if exp <= time.Now().Unix() {
		t.Fatalf("expiry %d not in the future", exp)
	}

	claims, err := VerifyToken(tok, "s3cret")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.ID != 42 || claims.Role != "freelancer" {
		t.Fatalf("unexpected claims: id=%d role=%q", claims.ID, claims.Role)
	}
	if claims.SubjectInt() != 42 {
		t.Fatalf("subject = %q", claims.Subject)
	}
	if claims.RegisteredClaims.ID == "" {
		t.Fatal("expected jti to be set")
	}
}

func TestVerifyTokenRejects(t *testing.T) {
	tok, _, err := GenerateToken(1, "admin", "right", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := VerifyToken(tok, "wrong"); err == nil {
		t.Fatal("expected signature failure")
	}
	if _, err := VerifyToken("not.a.token", "right"); err == nil {
		t.Fatal("expected parse failure")
	}
	if _, err := VerifyToken(tok, ""); err == nil {
		t.Fatal("expected missing secret failure")
	}

	expired, _, err := GenerateToken(1, "admin", "right", time.Nanosecond)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := VerifyToken(expired, "right"); err == nil {
		t.Fatal("expected expiry failure")
	}
}

func TestParseTTL(t *testing.T) {
	cases := map[string]time.Duration{
		"":    15 * time.Minute,
		"30":  30 * time.Minute,
		"1h":  time.Hour,
		"20s": 20 * time.Second,
	}
	for in, want := range cases {
		got, err := ParseTTL(in)
		if err != nil || got != want {
			t.Errorf("ParseTTL(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseTTL("soon"); err == nil {
		t.Error("expected error for garbage ttl")
	}
}

func TestIdentity(t *testing.T) {
	if _, _, ok := Identity(context.Background()); ok {
		t.Fatal("empty context should carry no identity")
	}
	ctx := WithIdentity(context.Background(), 7, "client")
	id, role, ok := Identity(ctx)
	if !ok || id != 7 || role != "client" {
		t.Fatalf("got %d %q %v", id, role, ok)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-04")
	if err != nil || d.Day() != 4 || d.Month() != time.March {
		t.Fatalf("got %v, %v", d, err)
	}
	if _, err := ParseDate("04/03/2026"); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var body struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a","extra":1}`))
	w := httptest.NewRecorder()
	if err := DecodeJSON(w, r, &body); err == nil {
		t.Fatal("expected error")
	}
	if w.Code != 400 {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestQueryID(t *testing.T) {
	r := httptest.NewRequest("GET", "/?id=12&bad=x&neg=-1", nil)
	if v, ok := QueryID(r, "id"); !ok || v != 12 {
		t.Fatalf("id = %d %v", v, ok)
	}
	for _, k := range []string{"bad", "neg", "missing"} {
		if _, ok := QueryID(r, k); ok {
			t.Errorf("%s should not parse", k)
		}
	}
}

func TestDecodeOptionalJSON(t *testing.T) {
	type body struct {
		ID *int64 `json:"id"`
	}
	cases := []struct {
		name   string
		req    *http.Request
		status int
		hasID  bool
	}{
		{"no body", httptest.NewRequest("POST", "/", nil), 200, false},
		{"chunked empty", httptest.NewRequest("POST", "/", io.NopCloser(strings.NewReader(""))), 200, false},
		{"empty object", httptest.NewRequest("POST", "/", strings.NewReader(`{}`)), 200, false},
		{"with id", httptest.NewRequest("POST", "/", strings.NewReader(`{"id":3}`)), 200, true},
		{"broken", httptest.NewRequest("POST", "/", strings.NewReader(`{"id":`)), 400, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var b body
			w := httptest.NewRecorder()
			err := DecodeOptionalJSON(w, tc.req, &b)
			if (err != nil) != (tc.status == 400) || w.Code != tc.status {
				t.Fatalf("err = %v, status = %d", err, w.Code)
			}
			if (b.ID != nil) != tc.hasID {
				t.Fatalf("id = %v", b.ID)
			}
		})
	}
}
