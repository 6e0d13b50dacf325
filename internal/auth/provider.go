package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-core/pkg/config"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// SessionClaims are the token claims issued by the account backend.
type SessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Provider holds the current session token and exposes the boolean
// authentication signal the cart engine routes on. The host application sets
// and clears the token on login/logout; subscribers are notified whenever the
// status flips.
type Provider struct {
	cfg  config.JWTConfig
	logg *logger.Logger

	mu        sync.Mutex
	token     string
	userID    string
	expiresAt time.Time

	subscribers []func(authenticated bool)
}

// NewProvider validates the JWT configuration up front.
func NewProvider(cfg config.JWTConfig, logg *logger.Logger) (*Provider, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, fmt.Errorf("jwt issuer is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Provider{cfg: cfg, logg: logg}, nil
}

// SetToken adopts a session token after validating signature, issuer, and
// expiry. An invalid token is rejected and leaves the current status alone.
func (p *Provider) SetToken(ctx context.Context, token string) error {
	claims, err := parseClaims(p.cfg, token)
	if err != nil {
		return fmt.Errorf("parsing session token: %w", err)
	}

	p.mu.Lock()
	was := p.authenticatedLocked()
	p.token = token
	p.userID = claims.UserID
	if claims.ExpiresAt != nil {
		p.expiresAt = claims.ExpiresAt.Time
	} else {
		p.expiresAt = time.Time{}
	}
	now := p.authenticatedLocked()
	p.mu.Unlock()

	p.logg.Info(p.logg.WithField(ctx, "user_id", claims.UserID), "session token adopted")
	if was != now {
		p.notify(now)
	}
	return nil
}

// ClearToken drops the session, returning the provider to guest status.
func (p *Provider) ClearToken(ctx context.Context) {
	p.mu.Lock()
	was := p.authenticatedLocked()
	p.token = ""
	p.userID = ""
	p.expiresAt = time.Time{}
	p.mu.Unlock()

	p.logg.Info(ctx, "session token cleared")
	if was {
		p.notify(false)
	}
}

// IsAuthenticated reports whether a valid, unexpired session is held.
func (p *Provider) IsAuthenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authenticatedLocked()
}

// Token returns the raw session token for the gateway's bearer header.
func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.authenticatedLocked() {
		return ""
	}
	return p.token
}

// UserID returns the subject of the current session, or empty for guests.
func (p *Provider) UserID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.authenticatedLocked() {
		return ""
	}
	return p.userID
}

// Subscribe registers a status-change listener. Listeners run synchronously
// on the goroutine that flipped the status.
func (p *Provider) Subscribe(fn func(authenticated bool)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.subscribers = append(p.subscribers, fn)
	p.mu.Unlock()
}

func (p *Provider) authenticatedLocked() bool {
	if p.token == "" {
		return false
	}
	if !p.expiresAt.IsZero() && time.Now().After(p.expiresAt) {
		return false
	}
	return true
}

func (p *Provider) notify(authenticated bool) {
	p.mu.Lock()
	subscribers := make([]func(bool), len(p.subscribers))
	copy(subscribers, p.subscribers)
	p.mu.Unlock()

	for _, fn := range subscribers {
		fn(authenticated)
	}
}

func parseClaims(cfg config.JWTConfig, tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
