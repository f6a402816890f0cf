// Package identity verifies bearer tokens issued by the external identity
// provider. The platform never issues tokens itself: JWT access tokens are
// verified locally against the provider's signing secret, and opaque tokens
// fall back to the provider's introspection endpoint.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2/clientcredentials"
)

// Identity is the authenticated (user, client) pair carried by a token.
type Identity struct {
	UserID   string
	ClientID string
}

// Config holds verifier settings. IntrospectionURL is optional; when empty,
// only JWT access tokens are accepted.
type Config struct {
	JWTSecret        string
	IntrospectionURL string
	ClientID         string
	ClientSecret     string
	TokenURL         string
}

type Verifier struct {
	secret     []byte
	introspect string
	client     *http.Client
}

// NewVerifier builds a verifier. When introspection is configured the HTTP
// client authenticates to the provider with client credentials.
func NewVerifier(ctx context.Context, cfg Config) *Verifier {
	v := &Verifier{
		secret:     []byte(cfg.JWTSecret),
		introspect: cfg.IntrospectionURL,
		client:     http.DefaultClient,
	}
	if cfg.IntrospectionURL != "" && cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		v.client = cc.Client(ctx)
	}
	return v
}

// Verify validates a bearer token and extracts the acting identity.
func (v *Verifier) Verify(ctx context.Context, raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, fmt.Errorf("empty token")
	}

	if id, err := v.verifyJWT(raw); err == nil {
		return id, nil
	}

	if v.introspect != "" {
		return v.introspectToken(ctx, raw)
	}
	return Identity{}, fmt.Errorf("invalid access token")
}

func (v *Verifier) verifyJWT(raw string) (Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("invalid jwt: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("unexpected claims type")
	}
	id := Identity{}
	if sub, ok := claims["sub"].(string); ok {
		id.UserID = sub
	}
	if cid, ok := claims["client_id"].(string); ok {
		id.ClientID = cid
	}
	// aud is the fallback client binding for providers that do not emit a
	// client_id claim.
	if id.ClientID == "" {
		if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 {
			id.ClientID = aud[0]
		}
	}
	if id.ClientID == "" {
		return Identity{}, fmt.Errorf("token carries no client identity")
	}
	return id, nil
}

type introspection struct {
	Active   bool   `json:"active"`
	Sub      string `json:"sub"`
	ClientID string `json:"client_id"`
}

func (v *Verifier) introspectToken(ctx context.Context, raw string) (Identity, error) {
	form := url.Values{"token": {raw}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.introspect,
		strings.NewReader(form.Encode()))
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("introspect token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("introspection failed (%d)", resp.StatusCode)
	}

	var result introspection
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Identity{}, err
	}
	if !result.Active || result.ClientID == "" {
		return Identity{}, fmt.Errorf("invalid access token")
	}
	return Identity{UserID: result.Sub, ClientID: result.ClientID}, nil
}
