package oauth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

const googleUserInfo = "https://openidconnect.googleapis.com/v1/userinfo"

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// NewGoogle builds the Google provider. userInfoURL is the OpenID Connect
// userinfo endpoint.
func NewGoogle(clientID, clientSecret, redirectURL string, endpoint oauth2.Endpoint, userInfoURL string) *Provider {
	return &Provider{
		Name: Google,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		profile: func(ctx context.Context, c *http.Client) (*Profile, error) {
			var claims googleClaims
			if err := getJSON(ctx, c, userInfoURL, &claims); err != nil {
				return nil, err
			}
			if claims.Email == "" || !claims.EmailVerified {
				return nil, ErrNoVerifiedEmail
			}
			return &Profile{Email: claims.Email, Name: claims.Name}, nil
		},
	}
}
