package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"studio/internal/domain"
)

// TokenClaims are the claims of an access token issued by the identity
// backend.
type TokenClaims struct {
	Sub          string       `json:"sub"`
	Email        string       `json:"email,omitempty"`
	Role         string       `json:"role,omitempty"`
	Audience     string       `json:"aud,omitempty"`
	Issuer       string       `json:"iss,omitempty"`
	Exp          int64        `json:"exp"`
	Locale       string       `json:"locale,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	AppMetadata  AppMetadata  `json:"app_metadata"`
}

type UserMetadata struct {
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type AppMetadata struct {
	Provider string `json:"provider,omitempty"`
}

// User converts the claims into a domain user.
func (c TokenClaims) User() domain.User {
	return domain.User{
		ID:        c.Sub,
		Email:     c.Email,
		Name:      c.UserMetadata.FullName,
		AvatarURL: c.UserMetadata.AvatarURL,
		Provider:  c.AppMetadata.Provider,
	}
}

var (
	errInvalidToken     = errors.New("invalid token")
	errInvalidSignature = errors.New("invalid signature")
	errTokenExpired     = errors.New("token expired")
	errWrongAudience    = errors.New("unexpected audience")
)

type userKey string

const (
	userIDKey userKey = "user_id"
	claimsKey userKey = "claims"
)

// SignJWT issues an HS256 token. The service only verifies tokens; signing is
// used by tests and local tooling.
func SignJWT(secret string, claims TokenClaims) (string, error) {
	headerJSON, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	data := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)
	return data + "." + hmacSign(secret, data), nil
}

func hmacSign(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyJWT checks signature and expiry. An empty audience skips the audience
// check.
func VerifyJWT(secret, audience, token string, now time.Time) (*TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errInvalidToken
	}
	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, errInvalidToken
	}
	var h struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(header, &h); err != nil || h.Alg != "HS256" {
		return nil, errInvalidToken
	}
	expected := hmacSign(secret, parts[0]+"."+parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return nil, errInvalidSignature
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errInvalidToken
	}
	var claims TokenClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, errInvalidToken
	}
	if claims.Sub == "" {
		return nil, errInvalidToken
	}
	if claims.Exp != 0 && now.Unix() > claims.Exp {
		return nil, errTokenExpired
	}
	if audience != "" && claims.Audience != audience {
		return nil, errWrongAudience
	}
	return &claims, nil
}

// AuthJWT rejects requests without a valid bearer token.
func AuthJWT(secret, audience string) func(http.Handler) http.Handler {
	return authenticate(secret, audience, true)
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalAuth(secret, audience string) func(http.Handler) http.Handler {
	return authenticate(secret, audience, false)
}

func authenticate(secret, audience string, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				if required {
					writeUnauthorized(w, "missing authorization")
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			claims, err := VerifyJWT(secret, audience, token, time.Now())
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}
			ctx := ContextWithClaims(r.Context(), claims)
			if claims.Locale != "" {
				ctx = context.WithValue(ctx, LocaleKey, normalizeLocale(claims.Locale))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the access token from the Authorization header, or
// from the access_token query parameter for event streams.
func BearerToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "" {
			return strings.TrimSpace(parts[1]), true
		}
		return "", false
	}
	if t := strings.TrimSpace(r.URL.Query().Get("access_token")); t != "" {
		return t, true
	}
	return "", false
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusUnauthorized, "unauthorized", msg)
}

// writeError writes the API error envelope for middleware rejections.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromContext returns the verified claims, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *TokenClaims {
	c, _ := ctx.Value(claimsKey).(*TokenClaims)
	return c
}

// UserFromContext returns the authenticated user, or the zero user.
func UserFromContext(ctx context.Context) domain.User {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.User()
	}
	return domain.User{ID: UserIDFromContext(ctx)}
}

func ContextWithClaims(ctx context.Context, claims *TokenClaims) context.Context {
	if claims == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, claimsKey, claims)
	return ContextWithUserID(ctx, claims.Sub)
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	if strings.TrimSpace(userID) == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey, userID)
}
