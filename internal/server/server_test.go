package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/syncx/internal/shared"
	"golang.org/x/oauth2"
)

// tokenServer answers every token exchange with a fixed token.
func tokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") == "" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"access","refresh_token":"refresh","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(tokenURL, redirect string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURL:  redirect,
		Endpoint:     oauth2.Endpoint{AuthURL: "https://auth.example.com/authorize", TokenURL: tokenURL},
	}
}

func TestOAuthHandler(t *testing.T) {
	tokens := tokenServer(t)

	t.Run("exchanges the code", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokens.URL, "http://127.0.0.1:3000/callback"), "s1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=abc", nil))

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Authorized") {
			t.Errorf("unexpected response %d: %s", rec.Code, rec.Body.String())
		}
		result := <-h.Result()
		if result.Err != nil || result.Token == nil || result.Token.RefreshToken != "refresh" {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("rejects a bad state", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokens.URL, ""), "s1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if result := <-h.Result(); result.Err == nil {
			t.Error("expected a state error")
		}
	})

	t.Run("reports a denied authorization", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokens.URL, ""), "s1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1&error=access_denied", nil))

		result := <-h.Result()
		if result.Err == nil || !strings.Contains(result.Err.Error(), "access_denied") {
			t.Errorf("expected access_denied, got %v", result.Err)
		}
	})

	t.Run("only the first callback counts", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokens.URL, ""), "s1")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=abc", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=abc", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for a replay, got %d", rec.Code)
		}
	})

	t.Run("rejects non-GET", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokens.URL, ""), "s1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callback", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("routes follow the redirect path", func(t *testing.T) {
		tests := []struct {
			redirect string
			want     string
		}{
			{"http://127.0.0.1:3000/callback", "/callback"},
			{"http://localhost:8888/auth/done", "/auth/done"},
			{"http://127.0.0.1:3000", "/callback"},
		}
		for _, tt := range tests {
			h := NewOAuthHandler(testConfig(tokens.URL, tt.redirect), "s")
			if got := h.Routes(); len(got) != 1 || got[0] != tt.want {
				t.Errorf("Routes(%q) = %v, want %s", tt.redirect, got, tt.want)
			}
		}
	})

	t.Run("auth url carries state and offline access", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokens.URL, ""), "s1")
		u := h.AuthURL()
		if !strings.Contains(u, "state=s1") || !strings.Contains(u, "access_type=offline") {
			t.Errorf("unexpected auth url %s", u)
		}
	})
}

func TestCallbackServer(t *testing.T) {
	tokens := tokenServer(t)
	logger := shared.NewLogger(io.Discard)

	t.Run("returns the exchanged token", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokens.URL, "http://127.0.0.1:0/callback"), "s1")
		srv := NewCallbackServer(h, logger, Logging(logger))
		if err := srv.Start("127.0.0.1:0"); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		go func() {
			resp, err := http.Get("http://" + srv.Addr() + "/callback?state=s1&code=abc")
			if err == nil {
				resp.Body.Close()
			}
		}()

		token, err := srv.Wait(context.Background(), 5*time.Second)
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if token.AccessToken != "access" {
			t.Errorf("unexpected token %+v", token)
		}
	})

	t.Run("callback errors are auth failures", func(t *testing.T) {
		h := NewOAuthHandler(testConfig(tokens.URL, ""), "s1")
		srv := NewCallbackServer(h, logger)
		if err := srv.Start("127.0.0.1:0"); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		go func() {
			resp, err := http.Get("http://" + srv.Addr() + "/callback?state=wrong")
			if err == nil {
				resp.Body.Close()
			}
		}()

		if _, err := srv.Wait(context.Background(), 5*time.Second); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("times out", func(t *testing.T) {
		srv := NewCallbackServer(NewOAuthHandler(testConfig(tokens.URL, ""), "s1"), logger)
		if err := srv.Start("127.0.0.1:0"); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if _, err := srv.Wait(context.Background(), 10*time.Millisecond); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		srv := NewCallbackServer(NewOAuthHandler(testConfig(tokens.URL, ""), "s1"), logger)
		if err := srv.Start("127.0.0.1:0"); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := srv.Wait(ctx, time.Minute); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestCallbackAddr(t *testing.T) {
	tests := []struct {
		redirect string
		want     string
		wantErr  bool
	}{
		{"http://127.0.0.1:3000/callback", "127.0.0.1:3000", false},
		{"http://localhost:8080/cb", "localhost:8080", false},
		{"http://[::1]:9000/cb", "[::1]:9000", false},
		{"http://127.0.0.1/callback", "", true},
		{"https://example.com:443/callback", "", true},
		{"://bad", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.redirect, func(t *testing.T) {
			got, err := CallbackAddr(tt.redirect)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CallbackAddr() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if got != tt.want {
				t.Errorf("CallbackAddr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBasicRouter(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewBasicRouter()
	router.Use(mark("outer"), mark("inner"))
	router.Handler(NewOAuthHandler(testConfig("http://unused", "http://127.0.0.1:1/done"), "s"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/done", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected the handler to answer 405, got %d", rec.Code)
	}
	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("middleware order = %v", order)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown path, got %d", rec.Code)
	}
}
