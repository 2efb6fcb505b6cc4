// Package session resolves the current user of an HTTP request from either a Firebase ID token
// or a bridge token minted by the OAuth bridge.
package session

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/authtoken"
)

// CookieName is the cookie the front end stores the bridge token in.
const CookieName = "authToken"

// Source names where an identity came from.
type Source string

const (
	SourceFirebase Source = "firebase"
	SourceBridge   Source = "bridge"
)

// Identity is the resolved user of a request.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Source Source
}

// IDTokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// BridgeVerifier verifies bridge tokens. *authtoken.Issuer satisfies it.
type BridgeVerifier interface {
	Verify(raw string) (*authtoken.Identity, error)
}

// Resolver has no side effects; it only reads the request.
type Resolver struct {
	firebase IDTokenVerifier
	bridge   BridgeVerifier
	logger   *zap.Logger
}

// NewResolver builds a Resolver. Either verifier may be nil to disable that source.
func NewResolver(firebase IDTokenVerifier, bridge BridgeVerifier, logger *zap.Logger) *Resolver {
	return &Resolver{firebase: firebase, bridge: bridge, logger: logger}
}

// Resolve returns the request's identity. Firebase takes precedence over the bridge token.
// Malformed or expired tokens are logged and treated as absent.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (*Identity, bool) {
	bearer := BearerToken(req)

	if bearer != "" {
		if id, ok := r.fromFirebase(ctx, bearer); ok {
			return id, true
		}
		if id, ok := r.fromBridge(bearer); ok {
			return id, true
		}
		r.logger.Warn("Rejected bearer token", zap.String("path", req.URL.Path))
	}

	if c, err := req.Cookie(CookieName); err == nil && c.Value != "" {
		if id, ok := r.fromBridge(c.Value); ok {
			return id, true
		}
		r.logger.Warn("Rejected session cookie", zap.String("path", req.URL.Path))
	}

	return nil, false
}

func (r *Resolver) fromFirebase(ctx context.Context, raw string) (*Identity, bool) {
	if r.firebase == nil {
		return nil, false
	}
	token, err := r.firebase.VerifyIDToken(ctx, raw)
	if err != nil {
		r.logger.Debug("Firebase ID token verification failed", zap.Error(err))
		return nil, false
	}
	id := &Identity{UserID: token.UID, Source: SourceFirebase}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, true
}

func (r *Resolver) fromBridge(raw string) (*Identity, bool) {
	if r.bridge == nil {
		return nil, false
	}
	claims, err := r.bridge.Verify(raw)
	if err != nil {
		r.logger.Debug("Bridge token verification failed", zap.Error(err))
		return nil, false
	}
	return &Identity{UserID: claims.ID, Email: claims.Email, Name: claims.Name, Source: SourceBridge}, true
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(req *http.Request) string {
	parts := strings.Fields(req.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
