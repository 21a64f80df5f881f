// Package oauth implements the authorization-code sign-in flow for GitHub
// and Google. The portal only needs the provider-confirmed email address and
// a display name; provider tokens are discarded after the profile is read.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/server/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// Provider names as they appear in routes.
const (
	GitHub = "github"
	Google = "google"
)

// ErrNoVerifiedEmail means the provider did not vouch for any address.
var ErrNoVerifiedEmail = errors.New("provider returned no verified email")

// Profile is what a provider tells us about the person signing in.
type Profile struct {
	Email string
	Name  string
}

// Flow is the authorization-code flow of one provider.
type Flow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// Provider is one configured OAuth application.
type Provider struct {
	Name    string
	config  *oauth2.Config
	profile func(ctx context.Context, c *http.Client) (*Profile, error)
}

// AuthCodeURL is where the browser is sent to start signing in.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the callback code for a token and reads the profile.
func (p *Provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s token exchange: %v", common.ErrUpstreamFailure, p.Name, err)
	}
	return p.profile(ctx, p.config.Client(ctx, tok))
}

// Registry holds the providers that have client credentials configured.
type Registry struct {
	providers map[string]*Provider
}

// NewRegistry registers GitHub and Google when their client ids are set.
// Callback URLs are derived from cfg.PublicURL.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{providers: map[string]*Provider{}}
	base := strings.TrimRight(cfg.PublicURL, "/")

	if cfg.GitHubClientID != "" {
		r.Add(NewGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, callbackURL(base, GitHub), endpoints.GitHub, githubAPI))
	}
	if cfg.GoogleClientID != "" {
		r.Add(NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, callbackURL(base, Google), endpoints.Google, googleUserInfo))
	}
	return r
}

func (r *Registry) Add(p *Provider) {
	r.providers[p.Name] = p
}

// Get returns the named provider if it is configured.
func (r *Registry) Get(name string) (Flow, bool) {
	p, ok := r.providers[name]
	if !ok {
		return nil, false
	}
	return p, true
}

func callbackURL(base, provider string) string {
	return fmt.Sprintf("%s/auth/oauth/%s/callback", base, provider)
}

// getJSON fetches url with the authorized client and decodes the body.
func getJSON(ctx context.Context, c *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", common.ErrUpstreamFailure, url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", common.ErrUpstreamFailure, url, err)
	}
	return nil
}
