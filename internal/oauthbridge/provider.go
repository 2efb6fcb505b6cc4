// Package oauthbridge implements the Pawssword OAuth bridge: it runs the authorization code
// flow against Google or GitHub and hands the front end a signed bridge token.
package oauthbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	githubUserURL     = "https://api.github.com/user"
	githubEmailsURL   = "https://api.github.com/user/emails"
)

// Profile is the identity extracted from a provider.
type Profile struct {
	ID    string
	Email string
	Name  string
}

// Provider is one OAuth identity provider.
type Provider struct {
	Name        string
	OAuth       *oauth2.Config
	AuthOptions []oauth2.AuthCodeOption
	ProfileURL  string
	// EmailsURL is consulted when the profile carries no email. Empty disables the lookup.
	EmailsURL string
	decode    func(ctx context.Context, p *Provider, client *http.Client, body []byte) (*Profile, error)
}

// NewGoogleProvider configures Google with the email and profile scopes.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: "google",
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		},
		AuthOptions: []oauth2.AuthCodeOption{oauth2.AccessTypeOffline},
		ProfileURL:  googleUserInfoURL,
		decode:      decodeGoogleProfile,
	}
}

// NewGitHubProvider configures GitHub with the user:email scope.
func NewGitHubProvider(clientID, clientSecret, redirectURL string) *Provider {
	return &Provider{
		Name: "github",
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		ProfileURL: githubUserURL,
		EmailsURL:  githubEmailsURL,
		decode:     decodeGitHubProfile,
	}
}

// Identify exchanges an authorization code and fetches the user's profile.
func (p *Provider) Identify(ctx context.Context, code string) (*Profile, error) {
	token, err := p.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s code exchange: %w", p.Name, err)
	}
	client := p.OAuth.Client(ctx, token)

	body, err := getJSON(ctx, client, p.ProfileURL)
	if err != nil {
		return nil, fmt.Errorf("%s profile: %w", p.Name, err)
	}
	profile, err := p.decode(ctx, p, client, body)
	if err != nil {
		return nil, fmt.Errorf("%s profile: %w", p.Name, err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%s profile has no id", p.Name)
	}
	return profile, nil
}

func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return body, nil
}

func decodeGoogleProfile(_ context.Context, _ *Provider, _ *http.Client, body []byte) (*Profile, error) {
	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &Profile{ID: info.ID, Email: info.Email, Name: info.Name}, nil
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func decodeGitHubProfile(ctx context.Context, p *Provider, client *http.Client, body []byte) (*Profile, error) {
	var info struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	profile := &Profile{Email: info.Email, Name: info.Name}
	if info.ID != 0 {
		profile.ID = strconv.FormatInt(info.ID, 10)
	}
	if strings.TrimSpace(profile.Name) == "" {
		profile.Name = info.Login
	}
	if profile.Email == "" && p.EmailsURL != "" {
		if raw, err := getJSON(ctx, client, p.EmailsURL); err == nil {
			var emails []githubEmail
			if json.Unmarshal(raw, &emails) == nil {
				profile.Email = primaryEmail(emails)
			}
		}
	}
	return profile, nil
}

// primaryEmail prefers the primary verified address, then any verified one.
func primaryEmail(emails []githubEmail) string {
	fallback := ""
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			return e.Email
		}
		if fallback == "" {
			fallback = e.Email
		}
	}
	return fallback
}
