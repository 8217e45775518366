package ui

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"koi_orders/internal/api"
	"koi_orders/internal/config"
	"koi_orders/internal/draft"
	"koi_orders/internal/session"
	"koi_orders/internal/store"

	"go.uber.org/zap"
)

func newTestRunner(t *testing.T, baseURL, input string, st *store.Store) *Runner {
	t.Helper()
	cfg := config.Config{APIBaseURL: baseURL, Timeout: 5 * time.Second}
	sess := session.New(st, zap.NewNop())
	client := api.NewClient(cfg, zap.NewNop(), sess.Token)

	r := &Runner{
		cfg:     cfg,
		logger:  zap.NewNop(),
		client:  client,
		session: sess,
		store:   st,
		draft:   draft.New(st),
		in:      bufio.NewScanner(strings.NewReader(input)),
		out:     &bytes.Buffer{},
	}
	client.OnAuthFailure(func() {
		r.authFailed = true
	})
	return r
}

// A wrong password while an expired token is still cached must stay a
// local login error: the next successful login lands on the draft screen
// and stays there.
func TestFailedLoginDoesNotStickAuthRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body.Password != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"fresh","user":{"id":1,"email":"x@y.com","role":"staff"}}`))
	})
	mux.HandleFunc("/api/items", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"key":"rice","label":"Rice","category":"Left","unit":"kg"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	st := store.New(config.Config{StateDir: t.TempDir()}, zap.NewNop())
	st.SaveToken("stale-token")

	input := "x@y.com\nbad\nx@y.com\ngood\nquit\n"
	r := newTestRunner(t, srv.URL, input, st)
	ctx := context.Background()

	if next := r.loginScreen(ctx); next != screenLogin {
		t.Fatalf("failed login: got screen %d, want login again", next)
	}
	if next := r.loginScreen(ctx); next != screenDraft {
		t.Fatalf("successful login: got screen %d, want draft", next)
	}
	if next := r.draftScreen(ctx); next != screenQuit {
		t.Fatalf("draft screen after login: got screen %d, want quit", next)
	}
}
