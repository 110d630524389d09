package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"greetly.org/internal/auth"
	"greetly.org/internal/greeting"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1700000000, 0).UTC()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	t     *testing.T
	ts    *httptest.Server
	users *auth.MemoryUserStore
	svc   *auth.Service
	clock *testClock
}

// newTestEnv starts the full handler chain behind a TLS test server.
// Session cookies are marked Secure, so a plain HTTP test server would
// never get them back from the cookie jar.
func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	users := auth.NewMemoryUserStore()
	clock := newTestClock()
	svc, err := auth.NewService(users, testSigningKey, auth.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	allOpts := append([]Option{WithRateLimit(1000, 1000), WithVersion("test")}, opts...)
	api := New(svc, users, greeting.NewMemoryRepository(), allOpts...)

	ts := httptest.NewTLSServer(api.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{t: t, ts: ts, users: users, svc: svc, clock: clock}
}

// apiClient is one browser-like caller with its own cookie jar.
type apiClient struct {
	t  *testing.T
	ts *httptest.Server
	hc *http.Client
}

func (e *testEnv) client() *apiClient {
	e.t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		e.t.Fatalf("cookiejar: %v", err)
	}
	return &apiClient{
		t:  e.t,
		ts: e.ts,
		hc: &http.Client{Transport: e.ts.Client().Transport, Jar: jar},
	}
}

func (c *apiClient) do(method, path string, body any) *http.Response {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.ts.URL+path, rd)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func (c *apiClient) register(username, password, company string, roles []string) int64 {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/v1/auth/users", map[string]any{
		"username":   username,
		"password":   password,
		"company_id": company,
		"roles":      roles,
	})
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
	return decode[map[string]int64](c.t, resp)["id"]
}

func (c *apiClient) login(username, password string) profileResponse {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/v1/auth", map[string]string{
		"username": username,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
	return decode[profileResponse](c.t, resp)
}

func sessionCookieFrom(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}
