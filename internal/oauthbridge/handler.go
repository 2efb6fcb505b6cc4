package oauthbridge

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/authtoken"
)

const (
	stateCookieName = "pawssword_state"
	stateTTL        = 10 * time.Minute
	profileTimeout  = 15 * time.Second
	failureMessage  = "Authentication failed"
	homeMessage     = "Logged in successfully! Welcome to DailyWhisker Home."
)

var errStateMismatch = errors.New("oauth state mismatch")

type oauthState struct {
	State    string
	Provider string
}

// Handler serves the bridge endpoints.
type Handler struct {
	providers   map[string]*Provider
	issuer      *authtoken.Issuer
	cookies     *securecookie.SecureCookie
	frontendURL string
	secure      bool
	logger      *zap.Logger
}

// NewHandler builds the bridge. stateKey signs the state cookie; a random key is used when
// it is empty, which invalidates in-flight logins on restart.
func NewHandler(providers []*Provider, issuer *authtoken.Issuer, stateKey []byte, frontendURL string, secureCookies bool, logger *zap.Logger) *Handler {
	if len(stateKey) == 0 {
		stateKey = securecookie.GenerateRandomKey(32)
	}
	sc := securecookie.New(stateKey, nil)
	sc.MaxAge(int(stateTTL.Seconds()))

	byName := make(map[string]*Provider, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	return &Handler{
		providers:   byName,
		issuer:      issuer,
		cookies:     sc,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		secure:      secureCookies,
		logger:      logger,
	}
}

// RegisterRoutes mounts /auth/:provider, /auth/:provider/callback and /home.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/auth/:provider", h.Login)
	r.GET("/auth/:provider/callback", h.Callback)
	r.GET("/home", h.Home)
}

func (h *Handler) provider(c *gin.Context) (*Provider, bool) {
	p, ok := h.providers[c.Param("provider")]
	if !ok {
		c.String(http.StatusNotFound, "Unknown provider")
		return nil, false
	}
	return p, true
}

// Login redirects to the provider's consent screen.
func (h *Handler) Login(c *gin.Context) {
	p, ok := h.provider(c)
	if !ok {
		return
	}
	state, err := generateState()
	if err != nil {
		h.logger.Error("failed to generate OAuth state", zap.Error(err))
		c.String(http.StatusInternalServerError, failureMessage)
		return
	}
	encoded, err := h.cookies.Encode(stateCookieName, oauthState{State: state, Provider: p.Name})
	if err != nil {
		h.logger.Error("failed to sign OAuth state", zap.Error(err))
		c.String(http.StatusInternalServerError, failureMessage)
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/auth/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Debug("Redirecting to OAuth consent screen", zap.String("provider", p.Name))
	c.Redirect(http.StatusTemporaryRedirect, p.OAuth.AuthCodeURL(state, p.AuthOptions...))
}

// Callback exchanges the code, mints a bridge token and redirects to the front end.
// Any failure answers 500 "Authentication failed" without a token.
func (h *Handler) Callback(c *gin.Context) {
	p, ok := h.provider(c)
	if !ok {
		return
	}
	h.clearState(c)

	token, err := h.complete(c, p)
	if err != nil {
		h.logger.Warn("OAuth callback failed", zap.String("provider", p.Name), zap.Error(err))
		c.String(http.StatusInternalServerError, failureMessage)
		return
	}

	target := fmt.Sprintf("%s/auth/%s/callback?token=%s", h.frontendURL, p.Name, url.QueryEscape(token))
	c.Redirect(http.StatusFound, target)
}

func (h *Handler) complete(c *gin.Context, p *Provider) (string, error) {
	if errParam := c.Query("error"); errParam != "" {
		return "", fmt.Errorf("provider returned error %q", errParam)
	}
	if err := h.checkState(c, p); err != nil {
		return "", err
	}
	code := c.Query("code")
	if code == "" {
		return "", errors.New("missing authorization code")
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), profileTimeout)
	defer cancel()
	profile, err := p.Identify(ctx, code)
	if err != nil {
		return "", err
	}

	token, err := h.issuer.Mint(authtoken.Identity{ID: profile.ID, Email: profile.Email, Name: profile.Name})
	if err != nil {
		return "", fmt.Errorf("mint bridge token: %w", err)
	}
	h.logger.Info("OAuth login completed", zap.String("provider", p.Name), zap.String("userID", profile.ID))
	return token, nil
}

func (h *Handler) checkState(c *gin.Context, p *Provider) error {
	raw, err := c.Cookie(stateCookieName)
	if err != nil {
		return fmt.Errorf("%w: no state cookie", errStateMismatch)
	}
	var stored oauthState
	if err := h.cookies.Decode(stateCookieName, raw, &stored); err != nil {
		return fmt.Errorf("%w: %v", errStateMismatch, err)
	}
	if stored.Provider != p.Name || stored.State == "" || stored.State != c.Query("state") {
		return errStateMismatch
	}
	return nil
}

func (h *Handler) clearState(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/auth/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Home is a plain landing page used to check a finished login by hand.
func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, homeMessage)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
