package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

// CallbackPath is the fixed path of the app redirect URI.
const CallbackPath = "/auth/callback"

// ErrProviderDisabled is returned when the backend has the provider turned off.
var ErrProviderDisabled = errors.New("provider disabled")

// CallbackError carries the error parameters of a failed OAuth redirect.
type CallbackError struct {
	Code        string
	Description string
}

func (e *CallbackError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("oauth callback: %s: %s", e.Code, e.Description)
	}
	return "oauth callback: " + e.Code
}

func (e *CallbackError) Unwrap() error { return domain.ErrUnauthorized }

// SignIn is the start of an OAuth flow: the client opens URL and the backend
// redirects back to the app with the flow id.
type SignIn struct {
	Provider Provider `json:"provider"`
	URL      string   `json:"url"`
	FlowID   string   `json:"flow_id"`
}

type ServiceOptions struct {
	Client    *Client
	Flows     *FlowStore
	AppScheme string
	Logger    zerolog.Logger
}

// Service wraps the identity backend's OAuth flows. Every operation returns
// a result or an error; backend failures never panic.
type Service struct {
	client      *Client
	flows       *FlowStore
	redirectURI string
	logger      zerolog.Logger
}

func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Client == nil {
		return nil, errors.New("auth: client is required")
	}
	flows := opts.Flows
	if flows == nil {
		flows = NewFlowStore(0)
	}
	scheme := strings.TrimSuffix(strings.TrimSpace(opts.AppScheme), "://")
	if scheme == "" {
		scheme = "myapp"
	}
	return &Service{
		client:      opts.Client,
		flows:       flows,
		redirectURI: scheme + ":/" + CallbackPath,
		logger:      opts.Logger,
	}, nil
}

// RedirectURI returns the app redirect URI without flow parameters.
func (s *Service) RedirectURI() string { return s.redirectURI }

func (s *Service) SignInWithGoogle(ctx context.Context) (*SignIn, error) {
	return s.SignIn(ctx, ProviderGoogle)
}

func (s *Service) SignInWithFacebook(ctx context.Context) (*SignIn, error) {
	return s.SignIn(ctx, ProviderFacebook)
}

func (s *Service) SignInWithTwitter(ctx context.Context) (*SignIn, error) {
	return s.SignIn(ctx, ProviderTwitter)
}

// SignIn checks that the backend has p enabled and returns the authorize URL
// of a new PKCE flow.
func (s *Service) SignIn(ctx context.Context, p Provider) (*SignIn, error) {
	if _, err := ParseProvider(string(p)); err != nil {
		return nil, err
	}
	settings, err := s.client.Settings(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", string(p)).Msg("auth: settings preflight failed")
		return nil, err
	}
	if !settings.External[string(p)] {
		return nil, fmt.Errorf("%w: %w: %s", domain.ErrProviderFailure, ErrProviderDisabled, p)
	}
	verifier, err := newVerifier()
	if err != nil {
		return nil, err
	}
	flowID := s.flows.put(p, verifier)
	redirect := s.redirectURI + "?" + url.Values{"flow": []string{flowID}}.Encode()
	return &SignIn{
		Provider: p,
		URL:      s.client.AuthorizeURL(p, redirect, challenge(verifier)),
		FlowID:   flowID,
	}, nil
}

// HandleAuthCallback completes a flow from the URL the backend redirected
// the app to. Parameters are read from the query and from the fragment.
func (s *Service) HandleAuthCallback(ctx context.Context, callbackURL string) (*domain.Session, error) {
	u, err := url.Parse(strings.TrimSpace(callbackURL))
	if err != nil {
		return nil, domain.Invalid(domain.CodeInvalidCallback, "url", err.Error())
	}
	params := u.Query()
	if u.Fragment != "" {
		if frag, err := url.ParseQuery(u.Fragment); err == nil {
			for k, v := range frag {
				if params.Get(k) == "" {
					params[k] = v
				}
			}
		}
	}
	if code := params.Get("error"); code != "" {
		return nil, &CallbackError{Code: code, Description: params.Get("error_description")}
	}
	authCode := params.Get("code")
	flowID := params.Get("flow")
	if authCode == "" || flowID == "" {
		return nil, domain.Invalid(domain.CodeInvalidCallback, "url", "code and flow are required")
	}
	f, ok := s.flows.take(flowID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown or expired sign-in flow", domain.ErrUnauthorized)
	}
	session, err := s.client.ExchangeCode(ctx, authCode, f.verifier)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", string(f.provider)).Msg("auth: code exchange failed")
		return nil, err
	}
	if session.User.Provider == "" {
		session.User.Provider = string(f.provider)
	}
	return session, nil
}

// GetUser resolves the user of an access token.
func (s *Service) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	return s.client.GetUser(ctx, accessToken)
}

// SignOut revokes the session of an access token.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	return s.client.SignOut(ctx, accessToken)
}
