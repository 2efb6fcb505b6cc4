package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/authtoken"
)

type stubFirebase struct {
	tokens map[string]*auth.Token
}

func (s stubFirebase) VerifyIDToken(_ context.Context, raw string) (*auth.Token, error) {
	if tok, ok := s.tokens[raw]; ok {
		return tok, nil
	}
	return nil, errors.New("ID token has invalid signature")
}

func TestResolve(t *testing.T) {
	issuer := authtoken.NewIssuer("bridge-secret", time.Hour)
	bridgeToken, err := issuer.Mint(authtoken.Identity{ID: "gh-7", Email: "gh@example.com", Name: "octo"})
	require.NoError(t, err)

	expired := authtoken.NewIssuer("bridge-secret", time.Nanosecond)
	expiredToken, err := expired.Mint(authtoken.Identity{ID: "gh-8"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	fb := stubFirebase{tokens: map[string]*auth.Token{
		"fb-token": {UID: "fb-uid", Claims: map[string]interface{}{"email": "fb@example.com"}},
	}}
	r := NewResolver(fb, issuer, zap.NewNop())

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantOK     bool
		wantUser   string
		wantSource Source
	}{
		{"firebase bearer", "Bearer fb-token", "", true, "fb-uid", SourceFirebase},
		{"bridge bearer", "Bearer " + bridgeToken, "", true, "gh-7", SourceBridge},
		{"bridge cookie", "", bridgeToken, true, "gh-7", SourceBridge},
		{"firebase wins over cookie", "Bearer fb-token", bridgeToken, true, "fb-uid", SourceFirebase},
		{"bad bearer falls back to cookie", "Bearer junk", bridgeToken, true, "gh-7", SourceBridge},
		{"lowercase scheme", "bearer fb-token", "", true, "fb-uid", SourceFirebase},
		{"expired bridge token", "", expiredToken, false, "", ""},
		{"malformed header", "Token fb-token", "", false, "", ""},
		{"nothing", "", "", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cats/daily", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}

			id, ok := r.Resolve(context.Background(), req)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantUser, id.UserID)
				assert.Equal(t, tt.wantSource, id.Source)
			}
		})
	}
}

func TestResolve_FirebaseClaims(t *testing.T) {
	fb := stubFirebase{tokens: map[string]*auth.Token{
		"t": {UID: "u", Claims: map[string]interface{}{"email": "e@example.com", "name": "Tabby"}},
	}}
	r := NewResolver(fb, nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer t")
	id, ok := r.Resolve(context.Background(), req)
	require.True(t, ok)
	assert.Equal(t, "e@example.com", id.Email)
	assert.Equal(t, "Tabby", id.Name)
}

func TestResolve_NoVerifiers(t *testing.T) {
	r := NewResolver(nil, nil, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	_, ok := r.Resolve(context.Background(), req)
	assert.False(t, ok)
}
