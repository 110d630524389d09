package httpapi

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestFreshSessionSlidesExpiry(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.register("alice", "pw", "acme", nil)

	loginAt := env.clock.Now()
	c.login("alice", "pw")

	env.clock.Advance(time.Minute)

	resp := c.do(http.MethodGet, "/v1/greetings", nil)
	resp.Body.Close()
	cookie := sessionCookieFrom(resp)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a refreshed session cookie")
	}

	slid, err := env.svc.ParseToken(cookie.Value)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if !slid.IssuedAt.Equal(loginAt) {
		t.Fatalf("fresh refresh must keep issuance basis: got %v want %v", slid.IssuedAt, loginAt)
	}
	wantExp := env.clock.Now().Add(30 * time.Minute)
	if !slid.ExpiresAt.Equal(wantExp) {
		t.Fatalf("expiry did not slide: got %v want %v", slid.ExpiresAt, wantExp)
	}
}

func TestStaleSessionRenewsWithCurrentRoles(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.register("alice", "pw", "acme", nil)
	c.login("alice", "pw")

	env.clock.Advance(5*time.Minute + time.Second)

	resp := c.do(http.MethodGet, "/v1/greetings", nil)
	resp.Body.Close()
	cookie := sessionCookieFrom(resp)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a renewed session cookie")
	}

	renewed, err := env.svc.ParseToken(cookie.Value)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if !renewed.IssuedAt.Equal(env.clock.Now()) {
		t.Fatalf("renewal must mint a fresh issuance: got %v want %v", renewed.IssuedAt, env.clock.Now())
	}
}

func TestDeletedUserSessionCleared(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	id := c.register("alice", "pw", "acme", nil)
	c.login("alice", "pw")

	env.users.Delete(context.Background(), id)
	env.clock.Advance(5*time.Minute + time.Second)

	resp := c.do(http.MethodGet, "/v1/greetings", nil)
	resp.Body.Close()
	cookie := sessionCookieFrom(resp)
	if cookie == nil || cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("expected clearing cookie, got %+v", cookie)
	}

	// The jar dropped the cookie, so the session is gone.
	create := c.do(http.MethodPost, "/v1/greetings", map[string]string{"message": "hi"})
	if create.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", create.StatusCode)
	}
	create.Body.Close()
}

func TestGarbageCookieIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/v1/greetings", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "garbage"})

	resp, err := c.hc.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	// Invalid tokens degrade silently: no clearing cookie, no refresh.
	if sessionCookieFrom(resp) != nil {
		t.Fatal("invalid token must not produce a Set-Cookie")
	}
}

func TestExpiredSessionIsAnonymous(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	c.register("alice", "pw", "acme", nil)
	c.login("alice", "pw")

	env.clock.Advance(31 * time.Minute)

	create := c.do(http.MethodPost, "/v1/greetings", map[string]string{"message": "hi"})
	if create.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", create.StatusCode)
	}
	create.Body.Close()
}
