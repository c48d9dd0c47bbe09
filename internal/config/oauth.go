package config

import (
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	azureUserInfoURL  = "https://graph.microsoft.com/oidc/userinfo"
)

func OAuthConfig(sso SSOConfig) (*oauth2.Config, error) {
	scopes := []string{"openid", "email", "profile"}

	var endpoint oauth2.Endpoint
	switch sso.Provider {
	case "google":
		endpoint = google.Endpoint
	case "azure":
		endpoint = microsoft.AzureADEndpoint(sso.Tenant)
	default:
		return nil, fmt.Errorf("unsupported SSO provider %q", sso.Provider)
	}

	return &oauth2.Config{
		ClientID:     sso.ClientID,
		ClientSecret: sso.ClientSecret,
		RedirectURL:  sso.RedirectURL,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}, nil
}

// UserInfoURL returns the OIDC userinfo endpoint, honouring an explicit
// SSO_USERINFO_URL override.
func UserInfoURL(sso SSOConfig) string {
	if sso.UserInfoURL != "" {
		return sso.UserInfoURL
	}
	if sso.Provider == "google" {
		return googleUserInfoURL
	}
	return azureUserInfoURL
}
