package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"koi_orders/internal/api"
	"koi_orders/internal/config"

	"go.uber.org/zap"
)

func newClient(t *testing.T, handler http.Handler, token string) (*api.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Config{APIBaseURL: srv.URL, Timeout: 5 * time.Second}
	client := api.NewClient(cfg, zap.NewNop(), func() string { return token })
	return client, srv
}

func TestRequestContract(t *testing.T) {
	var seen struct {
		auth        string
		cacheCtl    string
		requestID   string
		contentType string
		body        map[string]any
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.auth = r.Header.Get("Authorization")
		seen.cacheCtl = r.Header.Get("Cache-Control")
		seen.requestID = r.Header.Get("X-Request-ID")
		seen.contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&seen.body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orderId":7}`))
	})

	client, _ := newClient(t, handler, "tok-abc")

	id, err := client.CreateOrder(context.Background(), []api.OrderLine{{ItemKey: "a", Qty: 3}, {ItemKey: "b", Qty: 0}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if id != 7 {
		t.Errorf("order id: got %d, want 7", id)
	}

	if seen.auth != "Bearer tok-abc" {
		t.Errorf("authorization: got %q", seen.auth)
	}
	if seen.cacheCtl != "no-store" {
		t.Errorf("cache-control: got %q", seen.cacheCtl)
	}
	if seen.requestID == "" {
		t.Error("expected an X-Request-ID header")
	}
	if seen.contentType != "application/json" {
		t.Errorf("content-type: got %q", seen.contentType)
	}

	// Zero-quantity lines survive serialization.
	items, ok := seen.body["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("body items: got %v", seen.body["items"])
	}
	second, _ := items[1].(map[string]any)
	if second["itemKey"] != "b" || second["qty"] != float64(0) {
		t.Errorf("zero line: got %v", second)
	}
}

func TestAuthFailureHookFiresOnForbidden(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"pin required"}`))
	})

	client, _ := newClient(t, handler, "tok-abc")
	fired := false
	client.OnAuthFailure(func() { fired = true })

	_, err := client.ListItems(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !fired {
		t.Error("expected auth failure hook to fire on 403")
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", apiErr.StatusCode)
	}
	if apiErr.Message != "pin required" {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestAuthFailureHookSkipsUnauthenticatedCalls(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	})

	// No cached token: a failed login is the screen's problem, not a
	// session expiry.
	client, _ := newClient(t, handler, "")
	fired := false
	client.OnAuthFailure(func() { fired = true })

	_, err := client.Login(context.Background(), "x@y.com", "bad")
	if err == nil {
		t.Fatal("expected error")
	}
	if fired {
		t.Error("hook must not fire for unauthenticated calls")
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "invalid credentials" {
		t.Errorf("message: got %q", apiErr.Message)
	}
}

func TestLoginIgnoresStaleCachedToken(t *testing.T) {
	var auths []string
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"fresh"}`))
	})

	// An expired token is still cached from a previous session.
	client, _ := newClient(t, handler, "stale-token")
	fired := false
	client.OnAuthFailure(func() { fired = true })

	if _, err := client.Login(context.Background(), "x@y.com", "bad"); err == nil {
		t.Fatal("expected error for the wrong password")
	}
	if fired {
		t.Error("failed password attempt must not trigger the re-login hook")
	}

	result, err := client.Login(context.Background(), "x@y.com", "good")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if result.Token != "fresh" {
		t.Errorf("token: got %q, want %q", result.Token, "fresh")
	}

	if err := client.Register(context.Background(), "x@y.com", "secret123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i, auth := range auths {
		if auth != "" {
			t.Errorf("call %d: credential exchange carried Authorization %q", i, auth)
		}
	}
}

func TestVerifyPINUsesPreAuthToken(t *testing.T) {
	var seenAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"full","user":{"id":1,"email":"x@y.com","role":"staff"}}`))
	})

	client, _ := newClient(t, handler, "cached-token")

	result, err := client.VerifyPIN(context.Background(), "pre-token", "1234")
	if err != nil {
		t.Fatalf("verify pin: %v", err)
	}
	if seenAuth != "Bearer pre-token" {
		t.Errorf("authorization: got %q, want the pre-auth token", seenAuth)
	}
	if result.Token != "full" || result.User == nil || result.User.Email != "x@y.com" {
		t.Errorf("result: got %+v", result)
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{"json error field", "application/json", `{"error":"boom"}`, "boom"},
		{"json without error field", "application/json", `{"detail":"x"}`, ""},
		{"invalid json", "application/json", `{broken`, ""},
		{"plain text", "text/plain", "  server on fire  ", "server on fire"},
		{"empty body", "text/plain", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			})
			client, _ := newClient(t, handler, "tok")

			err := client.SubmitOrder(context.Background(), 1)
			var apiErr *api.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Message != tt.want {
				t.Errorf("message: got %q, want %q", apiErr.Message, tt.want)
			}
		})
	}
}

func TestListOrdersQuery(t *testing.T) {
	var seenQuery map[string][]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders":[{"id":1,"status":"sent","totalQty":3.5,"nonZeroLines":2}]}`))
	})
	client, _ := newClient(t, handler, "tok")

	orders, err := client.ListOrders(context.Background(), api.ListOrdersParams{Limit: 100, Status: api.StatusSent})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if got := seenQuery["limit"]; len(got) != 1 || got[0] != "100" {
		t.Errorf("limit param: got %v", got)
	}
	if got := seenQuery["status"]; len(got) != 1 || got[0] != "sent" {
		t.Errorf("status param: got %v", got)
	}
	if len(orders) != 1 || orders[0].Status != api.StatusSent || orders[0].TotalQty != 3.5 {
		t.Errorf("orders: got %+v", orders)
	}
}

func TestListOrdersOmitsEmptyFilter(t *testing.T) {
	var seenQuery map[string][]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orders":[]}`))
	})
	client, _ := newClient(t, handler, "tok")

	if _, err := client.ListOrders(context.Background(), api.ListOrdersParams{}); err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if _, present := seenQuery["status"]; present {
		t.Error("status param must be omitted without a filter")
	}
	if _, present := seenQuery["limit"]; present {
		t.Error("limit param must be omitted when zero")
	}
}

func TestGetOrder(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/9" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"order": {"id":9, "status":"draft", "created_by_name":"Bob"},
			"items": [{"itemKey":"a","qty":3}, {"itemKey":"b","qty":0}]
		}`))
	})
	client, _ := newClient(t, handler, "tok")

	order, lines, err := client.GetOrder(context.Background(), 9)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.ID != 9 || order.Status != api.StatusDraft || order.CreatedBy() != "Bob" {
		t.Errorf("order: got %+v", order)
	}
	if len(lines) != 2 || lines[1].Qty != 0 {
		t.Errorf("lines: got %+v", lines)
	}
}

func TestPreviewOrder(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/4/preview" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"KOI order\n- rice x 2"}`))
	})
	client, _ := newClient(t, handler, "tok")

	text, err := client.PreviewOrder(context.Background(), 4)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if text != "KOI order\n- rice x 2" {
		t.Errorf("text: got %q", text)
	}
}
