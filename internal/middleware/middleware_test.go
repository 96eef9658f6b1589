package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"farm-vet-appointments/internal/ports/auth"
)

// --- fakes ---

type stubVerifier struct {
	claims auth.Claims
	err    error
	got    string
}

func (s *stubVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func captureClaims(dst *auth.Claims, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst, *found = GetClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

// --- AuthContext ---

func TestAuthContext_DevHeaders(t *testing.T) {
	cases := []struct {
		name     string
		roleHdr  string
		wantRole auth.Role
	}{
		{"sin rol => farmer", "", auth.RoleFarmer},
		{"vet", "vet", auth.RoleVet},
		{"mayúsculas", " VET ", auth.RoleVet},
		{"rol desconocido => farmer", "admin", auth.RoleFarmer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got auth.Claims
			var found bool
			h := AuthContext(nil)(captureClaims(&got, &found))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Debug-User-ID", "user-1")
			if tc.roleHdr != "" {
				req.Header.Set("X-Debug-User-Role", tc.roleHdr)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if !found || got.UserID != "user-1" || got.Role != tc.wantRole {
				t.Fatalf("expected user-1/%s, got found=%v %+v", tc.wantRole, found, got)
			}
		})
	}
}

func TestAuthContext_DevWithoutHeaderHasNoClaims(t *testing.T) {
	var got auth.Claims
	found := true
	h := AuthContext(nil)(captureClaims(&got, &found))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if found {
		t.Fatalf("expected no claims, got %+v", got)
	}
}

func TestAuthContext_Verifier(t *testing.T) {
	v := &stubVerifier{claims: auth.Claims{UserID: "vet-9", Role: auth.RoleVet}}

	var got auth.Claims
	var found bool
	h := AuthContext(v)(captureClaims(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer abc.def")
	// En modo verifier los headers de debug se ignoran.
	req.Header.Set("X-Debug-User-ID", "intruder")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if v.got != "abc.def" {
		t.Fatalf("expected token abc.def, got %q", v.got)
	}
	if !found || got.UserID != "vet-9" {
		t.Fatalf("expected vet-9 claims, got found=%v %+v", found, got)
	}
}

func TestAuthContext_VerifierErrorLeavesRequestAnonymous(t *testing.T) {
	v := &stubVerifier{err: errors.New("bad token")}

	var got auth.Claims
	found := true
	h := AuthContext(v)(captureClaims(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if found {
		t.Fatalf("expected no claims on verify error")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected request to continue, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"Bearer":        "",
		"Basic abc":     "",
		"Bearer abc":    "abc",
		"BEARER  xyz  ": "xyz",
	}
	for in, want := range cases {
		if got := bearerToken(in); got != want {
			t.Fatalf("bearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}

// --- Recover / AccessLog ---

func TestRecover_LogsAndReturns500(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/appointments", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), `"msg":"panic recovered"`) || !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected panic log line, got %s", buf.String())
	}
}

func TestAccessLog_RecordsStatusAndClaims(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("conflict"))
	})
	h := AuthContext(nil)(AccessLog(log)(inner))

	req := httptest.NewRequest(http.MethodPost, "/appointments", nil)
	req.Header.Set("X-Debug-User-ID", "farmer-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["msg"] != "http request" || line["level"] != "INFO" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if line["status"] != float64(http.StatusConflict) || line["bytes"] != float64(len("conflict")) {
		t.Fatalf("expected status 409 and bytes 8, got %v", line)
	}
	if line["user_id"] != "farmer-1" || line["role"] != "farmer" || line["path"] != "/appointments" {
		t.Fatalf("expected claims and path in log, got %v", line)
	}
}

func TestAccessLog_ServerErrorAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Fatalf("expected ERROR level, got %s", buf.String())
	}
}
