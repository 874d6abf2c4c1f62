package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"studio/internal/domain"
)

// BackendError is an error reported by the identity backend.
type BackendError struct {
	Status  int
	Code    string
	Message string
}

func (e *BackendError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity backend: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("identity backend (%d): %s", e.Status, e.Message)
}

func (e *BackendError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return domain.ErrUnauthorized
	}
	return domain.ErrProviderFailure
}

type ClientOptions struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client talks to a GoTrue compatible identity backend.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

const clientTimeout = 15 * time.Second

func NewClient(opts ClientOptions) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("auth: identity backend url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("auth: invalid identity backend url: %w", err)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: clientTimeout}
	}
	return &Client{baseURL: base, apiKey: strings.TrimSpace(opts.APIKey), http: hc}, nil
}

// Settings is the subset of the backend settings used for preflight checks.
type Settings struct {
	External map[string]bool `json:"external"`
}

// Settings fetches which external providers are enabled.
func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodGet, "/auth/v1/settings", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthorizeURL builds the browser URL that starts an OAuth flow.
func (c *Client) AuthorizeURL(p Provider, redirectTo, codeChallenge string) string {
	q := url.Values{}
	q.Set("provider", string(p))
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", codeChallenge)
	q.Set("code_challenge_method", challengeMethod)
	for k, v := range p.authorizeParams() {
		q.Set(k, v)
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

type tokenRequest struct {
	AuthCode     string `json:"auth_code"`
	CodeVerifier string `json:"code_verifier"`
}

type sessionPayload struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	RefreshToken string      `json:"refresh_token"`
	User         userPayload `json:"user"`
}

type userPayload struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
	AppMetadata struct {
		Provider string `json:"provider"`
	} `json:"app_metadata"`
}

func (u userPayload) toDomain() domain.User {
	name := u.UserMetadata.FullName
	if name == "" {
		name = u.UserMetadata.Name
	}
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      name,
		AvatarURL: u.UserMetadata.AvatarURL,
		Provider:  u.AppMetadata.Provider,
		CreatedAt: u.CreatedAt,
	}
}

// ExchangeCode trades an authorization code and its verifier for a session.
func (c *Client) ExchangeCode(ctx context.Context, authCode, verifier string) (*domain.Session, error) {
	var out sessionPayload
	body := tokenRequest{AuthCode: authCode, CodeVerifier: verifier}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=pkce", "", body, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &BackendError{Status: http.StatusBadGateway, Message: "token response without access token"}
	}
	session := &domain.Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		TokenType:    out.TokenType,
		ExpiresIn:    out.ExpiresIn,
		User:         out.User.toDomain(),
	}
	if out.ExpiresAt > 0 {
		session.ExpiresAt = time.Unix(out.ExpiresAt, 0).UTC()
	} else if out.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().UTC().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return session, nil
}

// GetUser resolves the user owning accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	var out userPayload
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &out); err != nil {
		return nil, err
	}
	user := out.toDomain()
	return &user, nil
}

// SignOut revokes the session of accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return decodeBackendError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrProviderFailure, err)
	}
	return nil
}

func decodeBackendError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
		Code             any    `json:"code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	_ = json.Unmarshal(raw, &payload)
	be := &BackendError{Status: resp.StatusCode}
	switch {
	case payload.ErrorCode != "":
		be.Code = payload.ErrorCode
	case payload.Error != "":
		be.Code = payload.Error
	}
	for _, m := range []string{payload.ErrorDescription, payload.Msg, payload.Message} {
		if m != "" {
			be.Message = m
			break
		}
	}
	if be.Message == "" {
		be.Message = strings.TrimSpace(string(raw))
	}
	if be.Message == "" {
		be.Message = http.StatusText(resp.StatusCode)
	}
	return be
}
