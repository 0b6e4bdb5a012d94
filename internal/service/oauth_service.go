package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"library-api/internal/config"
	"library-api/internal/model"
	"library-api/pkg/apierror"
)

// OAuthService bootstraps provider sign-in by issuing signed, short-lived
// state values. The code exchange itself happens at the provider callback.
type OAuthService struct {
	providers map[string]config.OAuthProvider
	secret    []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewOAuthService(providers map[string]config.OAuthProvider, secret string, ttl time.Duration) *OAuthService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &OAuthService{
		providers: providers,
		secret:    []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *OAuthService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *OAuthService) Start(provider string) (model.OAuthStart, error) {
	p, ok := s.providers[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return model.OAuthStart{}, apierror.Wrap(model.ErrUnknownProvider, "NOT_FOUND", "unknown oauth provider", http.StatusNotFound)
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return model.OAuthStart{}, fmt.Errorf("generate oauth nonce: %w", err)
	}

	now := s.now()
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"prv":   p.Name,
		"nonce": base64.RawURLEncoding.EncodeToString(nonce),
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}).SignedString(s.secret)
	if err != nil {
		return model.OAuthStart{}, fmt.Errorf("sign oauth state: %w", err)
	}

	authorizeURL, err := url.Parse(p.AuthorizeURL)
	if err != nil {
		return model.OAuthStart{}, fmt.Errorf("parse authorize url for %s: %w", p.Name, err)
	}
	query := authorizeURL.Query()
	query.Set("response_type", "code")
	query.Set("client_id", p.ClientID)
	query.Set("state", state)
	authorizeURL.RawQuery = query.Encode()

	return model.OAuthStart{
		Provider:     p.Name,
		AuthorizeURL: authorizeURL.String(),
		State:        state,
		ExpiresIn:    int64(s.ttl.Seconds()),
	}, nil
}

func (s *OAuthService) VerifyState(provider string, state string) (model.OAuthState, error) {
	invalid := apierror.Wrap(model.ErrInvalidState, "BAD_REQUEST", "invalid or expired oauth state", http.StatusBadRequest)

	parsed, err := jwt.Parse(state, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return model.OAuthState{}, invalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return model.OAuthState{}, invalid
	}

	name, _ := claims["prv"].(string)
	nonce, _ := claims["nonce"].(string)
	if name == "" || nonce == "" || name != strings.ToLower(strings.TrimSpace(provider)) {
		return model.OAuthState{}, invalid
	}

	return model.OAuthState{Provider: name, Nonce: nonce}, nil
}
