// Package adminapi is the HTTP client for the admin gateway: login,
// session verification and command execution. Validation never reaches
// this layer; everything sent here is already a well-formed command
// string.
package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-cloud/meridian/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client talks to the admin gateway. Methods return discriminated
// errors: domain.ErrUnauthorized / ErrSessionExpired for auth problems,
// a ProtocolError for ok:false replies and ErrTransport for network
// failures. There is no automatic retry.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	logger  *zap.Logger
}

// New creates a gateway client. httpClient and logger may be nil.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: &Session{},
		logger:  logger,
	}
}

// Session exposes the client's session state.
func (c *Client) Session() *Session { return c.session }

type loginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt string `json:"expires_at"`
}

// Login authenticates and stores the issued token in the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("marshal login request: %w", err)
	}

	resp, err := c.post(ctx, "/admin/api/login", body, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("login: %w", domain.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: login returned status %d", domain.ErrTransport, resp.StatusCode)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	expiresAt, _ := time.Parse(time.RFC3339, lr.ExpiresAt)
	c.session.Set(lr.Token, lr.Username, expiresAt)
	c.logger.Debug("logged in", zap.String("username", lr.Username))
	return nil
}

// Logout clears the session. No server call is required; tokens expire
// on their own.
func (c *Client) Logout() {
	c.session.Clear()
}

// Verify checks the stored token against the gateway. An expired or
// rejected token clears the session.
func (c *Client) Verify(ctx context.Context) error {
	token, ok := c.session.Token()
	if !ok {
		return domain.ErrSessionExpired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/api/verify", nil)
	if err != nil {
		return fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Clear()
		return domain.ErrSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: verify returned status %d", domain.ErrTransport, resp.StatusCode)
	}
	return nil
}

type commandResponse struct {
	OK  bool   `json:"ok"`
	Err string `json:"err"`
}

// Execute runs a command string and returns the geodb's raw JSON reply.
// ok:false replies become a ProtocolError carrying the verbatim message.
func (c *Client) Execute(ctx context.Context, command string) (json.RawMessage, error) {
	token, ok := c.session.Token()
	if !ok {
		return nil, domain.ErrSessionExpired
	}

	body, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return nil, fmt.Errorf("marshal command request: %w", err)
	}

	resp, err := c.post(ctx, "/admin/api/command", body, token)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Clear()
		return nil, domain.ErrSessionExpired
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode command response: %v", domain.ErrTransport, err)
	}

	var cr commandResponse
	if err := json.Unmarshal(raw, &cr); err == nil && !cr.OK {
		msg := cr.Err
		if msg == "" {
			msg = "command failed"
		}
		return raw, &domain.ProtocolError{Message: msg}
	}
	return raw, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	return resp, nil
}
