package oauth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

const githubAPI = "https://api.github.com"

type githubUser struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// NewGitHub builds the GitHub provider. apiBase is the REST API root.
func NewGitHub(clientID, clientSecret, redirectURL string, endpoint oauth2.Endpoint, apiBase string) *Provider {
	return &Provider{
		Name: GitHub,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		profile: func(ctx context.Context, c *http.Client) (*Profile, error) {
			return githubProfile(ctx, c, apiBase)
		},
	}
}

// githubProfile prefers the primary verified address from /user/emails; the
// public profile email is not guaranteed to be verified.
func githubProfile(ctx context.Context, c *http.Client, apiBase string) (*Profile, error) {
	var u githubUser
	if err := getJSON(ctx, c, apiBase+"/user", &u); err != nil {
		return nil, err
	}

	var emails []githubEmail
	if err := getJSON(ctx, c, apiBase+"/user/emails", &emails); err != nil {
		return nil, err
	}

	email := ""
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			email = e.Email
			break
		}
		if email == "" {
			email = e.Email
		}
	}
	if email == "" {
		return nil, ErrNoVerifiedEmail
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}
	return &Profile{Email: email, Name: name}, nil
}
