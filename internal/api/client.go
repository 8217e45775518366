package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"koi_orders/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supplies the cached bearer token for outbound requests; an
// empty string means unauthenticated.
type TokenSource func() string

// AuthFailureHandler runs whenever the backend answers 401 or 403 to a call
// made with the cached token, regardless of which screen triggered it.
type AuthFailureHandler func()

// APIError carries the status code and the best-effort message extracted
// from a non-2xx response body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	http   *resty.Client
	tokens TokenSource
	logger *zap.Logger

	onAuthFailure AuthFailureHandler
}

func NewClient(cfg config.Config, logger *zap.Logger, tokens TokenSource) *Client {
	c := &Client{
		tokens: tokens,
		logger: logger.Named("api"),
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Cache-Control", "no-store")

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())
		if isPreAuth(req.Context()) {
			return nil
		}
		// An explicitly set token (the PIN pre-auth step) wins over the
		// cached session token.
		if req.Token == "" {
			if token := c.tokens(); token != "" {
				req.SetAuthToken(token)
			}
		}
		return nil
	})

	httpClient.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		code := resp.StatusCode()
		if code != http.StatusUnauthorized && code != http.StatusForbidden {
			return nil
		}
		// Only a rejected session token forces re-login; a failed password
		// or PIN attempt is handled inline by its own screen.
		cached := c.tokens()
		if cached != "" && resp.Request.Token == cached && c.onAuthFailure != nil {
			c.logger.Info("auth rejected, forcing login",
				zap.Int("status", code),
				zap.String("url", resp.Request.URL),
			)
			c.onAuthFailure()
		}
		return nil
	})

	c.http = httpClient
	return c
}

// OnAuthFailure registers the navigation hook for 401/403 responses.
func (c *Client) OnAuthFailure(fn AuthFailureHandler) {
	c.onAuthFailure = fn
}

type preAuthKey struct{}

// preAuth marks a credential exchange. These requests never carry the
// cached session token, so a stale token cannot turn a wrong password
// into a forced re-login.
func preAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, preAuthKey{}, true)
}

func isPreAuth(ctx context.Context) bool {
	v, _ := ctx.Value(preAuthKey{}).(bool)
	return v
}

func (c *Client) Register(ctx context.Context, email, password, displayName string) error {
	body := map[string]string{"email": email, "password": password}
	if strings.TrimSpace(displayName) != "" {
		body["displayName"] = displayName
	}
	resp, err := c.http.R().SetContext(preAuth(ctx)).SetBody(body).Post("/api/auth/register")
	return c.check(resp, err, "register")
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	resp, err := c.http.R().
		SetContext(preAuth(ctx)).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/auth/login")
	if err := c.check(resp, err, "login"); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// VerifyPIN upgrades a pre-auth token to a full session token.
func (c *Client) VerifyPIN(ctx context.Context, preToken, pin string) (AuthResult, error) {
	var out AuthResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(preToken).
		SetBody(map[string]string{"pin": pin}).
		SetResult(&out).
		Post("/api/auth/pin/verify")
	if err := c.check(resp, err, "verify pin"); err != nil {
		return AuthResult{}, err
	}
	return out, nil
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/auth/me")
	if err := c.check(resp, err, "load profile"); err != nil {
		return User{}, err
	}
	return out.User, nil
}

func (c *Client) UpdateDisplayName(ctx context.Context, displayName string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"displayName": displayName}).
		Patch("/api/auth/me/display-name")
	return c.check(resp, err, "update display name")
}

func (c *Client) UpdateEmail(ctx context.Context, newEmail, password string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"newEmail": newEmail, "password": password}).
		Patch("/api/auth/me/email")
	return c.check(resp, err, "update email")
}

func (c *Client) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}).
		Patch("/api/auth/me/password")
	return c.check(resp, err, "update password")
}

func (c *Client) SetPIN(ctx context.Context, pin string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"pin": pin}).
		Post("/api/auth/pin/set")
	return c.check(resp, err, "set pin")
}

func (c *Client) ChangePIN(ctx context.Context, oldPin, newPin string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"oldPin": oldPin, "newPin": newPin}).
		Post("/api/auth/pin/change")
	return c.check(resp, err, "change pin")
}

func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var out struct {
		Items []Item `json:"items"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/items")
	if err := c.check(resp, err, "load items"); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) CreateOrder(ctx context.Context, lines []OrderLine) (int, error) {
	var out struct {
		OrderID int `json:"orderId"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"items": lines}).
		SetResult(&out).
		Post("/api/orders")
	if err := c.check(resp, err, "create order"); err != nil {
		return 0, err
	}
	return out.OrderID, nil
}

func (c *Client) ListOrders(ctx context.Context, params ListOrdersParams) ([]OrderSummary, error) {
	var out struct {
		Orders []OrderSummary `json:"orders"`
	}
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if params.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(params.Limit))
	}
	if params.Status != "" {
		req.SetQueryParam("status", string(params.Status))
	}
	resp, err := req.Get("/api/orders")
	if err := c.check(resp, err, "list orders"); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID int) (Order, []OrderLine, error) {
	var out struct {
		Order Order       `json:"order"`
		Items []OrderLine `json:"items"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/api/orders/%d", orderID))
	if err := c.check(resp, err, "load order"); err != nil {
		return Order{}, nil, err
	}
	return out.Order, out.Items, nil
}

// PreviewOrder fetches the server-rendered text form of the order, the same
// text that ends up in the supplier email.
func (c *Client) PreviewOrder(ctx context.Context, orderID int) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/api/orders/%d/preview", orderID))
	if err := c.check(resp, err, "generate preview"); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *Client) SubmitOrder(ctx context.Context, orderID int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/api/orders/%d/submit", orderID))
	return c.check(resp, err, "submit order")
}

func (c *Client) SendOrder(ctx context.Context, orderID int, toEmail, message string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"toEmail": toEmail, "message": message}).
		Post(fmt.Sprintf("/api/orders/%d/send", orderID))
	return c.check(resp, err, "send order")
}

func (c *Client) DeleteOrder(ctx context.Context, orderID int) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/api/orders/%d", orderID))
	return c.check(resp, err, "delete order")
}

func (c *Client) check(resp *resty.Response, err error, action string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: %w", action, errorFromResponse(resp))
	}
	return nil
}

func errorFromResponse(resp *resty.Response) error {
	return &APIError{
		StatusCode: resp.StatusCode(),
		Message:    extractMessage(resp),
	}
}

// extractMessage pulls the backend's {"error": "..."} field when the body
// is JSON, falls back to raw text otherwise, and degrades to "" rather than
// failing.
func extractMessage(resp *resty.Response) string {
	body := resp.Body()
	if strings.Contains(resp.Header().Get("Content-Type"), "application/json") {
		var parsed struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return ""
		}
		return parsed.Error
	}
	return strings.TrimSpace(string(body))
}
