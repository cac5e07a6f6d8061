// Package client is a typed HTTP client for the note service. It keeps the
// session token between calls and owns the folder transitions of notes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/validation"
)

var ErrNoToken = errors.New("client: not logged in")

// APIError is a non-2xx response. Fields holds the decoded JSON object, if any.
type APIError struct {
	Status int
	Fields map[string]string
}

func (e *APIError) Error() string {
	if msg, ok := e.Fields["error"]; ok {
		return fmt.Sprintf("api error %d: %s", e.Status, msg)
	}
	if msg, ok := e.Fields["general"]; ok {
		return fmt.Sprintf("api error %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// StatusOf returns the HTTP status of an *APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Logout forgets the session token.
func (c *Client) Logout() {
	c.setToken("")
}

func (c *Client) SignUp(ctx context.Context, req validation.SignUpRequest) error {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/signup", false, req, &resp); err != nil {
		return err
	}
	c.setToken(resp.Token)
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	req := validation.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", false, req, &resp); err != nil {
		return err
	}
	c.setToken(resp.Token)
	return nil
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/reset", false, validation.ResetRequest{Email: email}, nil)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	req := validation.ResetConfirmRequest{Token: token, Password: password, ConfirmPassword: password}
	return c.do(ctx, http.MethodPost, "/reset/confirm", false, req, nil)
}

func (c *Client) User(ctx context.Context) (*models.User, error) {
	var resp struct {
		User models.User `json:"userCredentials"`
	}
	if err := c.do(ctx, http.MethodGet, "/user", true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateUser sends fields as given so that the server decides what is editable.
func (c *Client) UpdateUser(ctx context.Context, fields map[string]any) error {
	return c.do(ctx, http.MethodPost, "/user", true, fields, nil)
}

// UploadImage sends an image as the multipart field "image".
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, image io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="image"; filename=%q`, filename)},
		"Content-Type":        {contentType},
	})
	if err != nil {
		return fmt.Errorf("client.UploadImage: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return fmt.Errorf("client.UploadImage: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("client.UploadImage: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/user/image", true, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, authed, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, authed bool, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	if authed {
		token := c.Token()
		if token == "" {
			return nil, ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read %s %s: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(raw, &apiErr.Fields)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}
