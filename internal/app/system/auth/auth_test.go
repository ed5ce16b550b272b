package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/dalemusser/selecthub/internal/app/system/auth"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// signedInRequest signs a user in, then replays the issued cookie on a
// fresh request, which is what a browser does between calls.
func signedInRequest(t *testing.T, sm *auth.SessionManager, u auth.SessionUser, target string) *http.Request {
	t.Helper()

	signin := httptest.NewRequest("POST", "/signin", nil)
	rec := httptest.NewRecorder()
	if err := sm.SignIn(rec, signin, u); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	req := httptest.NewRequest("GET", target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := auth.NewSessionManager("", "s", "", false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/selections", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLoadSessionUser_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)

	u := auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "Dana Reyes", Level: 3}
	req := signedInRequest(t, sm, u, "/api/selections")

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected a session user in context")
	}
	if got.ID != u.ID || got.Name != u.Name || got.Level != u.Level {
		t.Errorf("session user round trip: got %+v, want %+v", got, u)
	}
}

func TestLoadSessionUser_FetcherRefreshesUser(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(fetcherFunc(func(ctx context.Context, userID string) *auth.SessionUser {
		return &auth.SessionUser{ID: userID, Name: "Dana Reyes", Level: 5}
	}))

	req := signedInRequest(t, sm, auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "Dana Reyes", Level: 3}, "/")

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected a session user in context")
	}
	if got.Level != 5 {
		t.Errorf("expected fetcher's level 5 to win over cached 3, got %d", got.Level)
	}
}

func TestLoadSessionUser_FetcherReturnsNil_SignedOut(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(fetcherFunc(func(ctx context.Context, userID string) *auth.SessionUser {
		return nil
	}))

	req := signedInRequest(t, sm, auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "Gone", Level: 2}, "/")

	handler := sm.LoadSessionUser(sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a removed user, got %d", rec.Code)
	}
}

func TestLoadSessionUser_BadCookie_ProceedsSignedOut(t *testing.T) {
	sm := newTestSessionManager(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-valid-session"})

	var ok bool
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = auth.CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected request to proceed, got %d", rec.Code)
	}
	if ok {
		t.Error("expected no user for an undecodable cookie")
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)
	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}

// fetcherFunc adapts a function to auth.UserFetcher.
type fetcherFunc func(ctx context.Context, userID string) *auth.SessionUser

func (f fetcherFunc) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	return f(ctx, userID)
}
