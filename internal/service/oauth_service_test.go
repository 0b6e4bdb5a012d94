package service

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/internal/config"
	"library-api/internal/model"
)

func newTestOAuthService() *OAuthService {
	return NewOAuthService(map[string]config.OAuthProvider{
		"google": {Name: "google", AuthorizeURL: "https://accounts.example.com/o/auth?prompt=consent", ClientID: "client-1"},
	}, "state-secret", 5*time.Minute)
}

func TestOAuthStartAndVerify(t *testing.T) {
	t.Parallel()

	svc := newTestOAuthService()
	start, err := svc.Start("Google")
	require.NoError(t, err)

	parsed, err := url.Parse(start.AuthorizeURL)
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", parsed.Host)
	assert.Equal(t, "client-1", parsed.Query().Get("client_id"))
	assert.Equal(t, "code", parsed.Query().Get("response_type"))
	assert.Equal(t, "consent", parsed.Query().Get("prompt"))
	assert.Equal(t, start.State, parsed.Query().Get("state"))
	assert.Equal(t, int64(300), start.ExpiresIn)

	state, err := svc.VerifyState("google", start.State)
	require.NoError(t, err)
	assert.Equal(t, "google", state.Provider)
	assert.NotEmpty(t, state.Nonce)
}

func TestOAuthUnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := newTestOAuthService().Start("myspace")
	assert.ErrorIs(t, err, model.ErrUnknownProvider)
}

func TestOAuthVerifyRejects(t *testing.T) {
	t.Parallel()

	svc := newTestOAuthService()
	start, err := svc.Start("google")
	require.NoError(t, err)

	_, err = svc.VerifyState("github", start.State)
	assert.ErrorIs(t, err, model.ErrInvalidState)

	_, err = svc.VerifyState("google", start.State+"x")
	assert.ErrorIs(t, err, model.ErrInvalidState)

	other := NewOAuthService(nil, "another-secret", time.Minute)
	_, err = other.VerifyState("google", start.State)
	assert.ErrorIs(t, err, model.ErrInvalidState)

	svc.SetClock(func() time.Time { return time.Now().Add(10 * time.Minute) })
	_, err = svc.VerifyState("google", start.State)
	assert.ErrorIs(t, err, model.ErrInvalidState)
}
