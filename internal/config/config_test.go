package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USERNAME", "portal")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_DATABASE", "portal")
	t.Setenv("ACCESS_TOKEN_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "r")
	t.Setenv("SSO_PROVIDER", "azure")
	t.Setenv("SSO_CLIENT_ID", "client")
	t.Setenv("SSO_CLIENT_SECRET", "secret")
	t.Setenv("SSO_REDIRECT_URL", "http://localhost:8080/api/v1/auth/sso/callback")
}

func TestLoad(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://portal.example.com ,")
	t.Setenv("SSO_ALLOWED_DOMAIN", " Example.COM ")
	t.Setenv("COOKIE_SECURE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173", "https://portal.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "example.com", cfg.SSO.AllowedDomain)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "5432", cfg.DBPort)
}

func TestValidateMissingSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.ValidateDatabase())
	assert.Error(t, cfg.Validate())
}

func TestValidateMissingDatabase(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.ValidateDatabase(), "DB_HOST")
}

func TestOAuthConfig(t *testing.T) {
	azure, err := OAuthConfig(SSOConfig{Provider: "azure", Tenant: "contoso", ClientID: "id"})
	require.NoError(t, err)
	assert.Contains(t, azure.Endpoint.AuthURL, "/contoso/")
	assert.Contains(t, azure.Scopes, "email")

	google, err := OAuthConfig(SSOConfig{Provider: "google"})
	require.NoError(t, err)
	assert.Contains(t, google.Endpoint.AuthURL, "google")

	_, err = OAuthConfig(SSOConfig{Provider: "okta"})
	assert.Error(t, err)
}

func TestUserInfoURL(t *testing.T) {
	assert.Equal(t, googleUserInfoURL, UserInfoURL(SSOConfig{Provider: "google"}))
	assert.Equal(t, azureUserInfoURL, UserInfoURL(SSOConfig{Provider: "azure"}))
	assert.Equal(t, "https://idp.example.com/userinfo",
		UserInfoURL(SSOConfig{Provider: "okta", UserInfoURL: "https://idp.example.com/userinfo"}))
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	setRequired(t)
	t.Setenv("SSO_PROVIDER", "okta")

	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "SSO_PROVIDER")
}
