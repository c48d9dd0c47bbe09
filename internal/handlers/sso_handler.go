package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"jobcard_portal/internal/logging"
	"jobcard_portal/internal/middlewares"
	"jobcard_portal/internal/responses"
	"jobcard_portal/internal/services"
	"jobcard_portal/internal/utils"
)

const (
	StateCookieName        = "oauth_state"
	RefreshTokenCookieName = "refresh_token"
	refreshCookiePath      = "/api/v1/auth"
)

type SSOHandler struct {
	authService  *services.AuthService
	oauthConfig  *oauth2.Config
	cookieSecure bool
}

func NewSSOHandler(authService *services.AuthService, oauthConfig *oauth2.Config, cookieSecure bool) *SSOHandler {
	return &SSOHandler{
		authService:  authService,
		oauthConfig:  oauthConfig,
		cookieSecure: cookieSecure,
	}
}

// Login handles GET /api/v1/auth/sso/login
func (h *SSOHandler) Login(c *gin.Context) {
	state, err := utils.GenerateStateOauthCookie()
	if err != nil {
		responses.Fail(c, http.StatusInternalServerError, err, "Failed to generate state")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(StateCookieName, state, 600, "/", "", h.cookieSecure, true)

	c.Redirect(http.StatusTemporaryRedirect, h.oauthConfig.AuthCodeURL(state))
}

// Callback handles GET /api/v1/auth/sso/callback
func (h *SSOHandler) Callback(c *gin.Context) {
	queryState := c.Query("state")
	if queryState == "" {
		responses.Fail(c, http.StatusBadRequest, nil, "Missing state parameter")
		return
	}
	cookieState, err := c.Cookie(StateCookieName)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Missing state cookie")
		return
	}
	if queryState != cookieState {
		responses.Fail(c, http.StatusForbidden, nil, "State mismatch")
		return
	}
	c.SetCookie(StateCookieName, "", -1, "/", "", h.cookieSecure, true)

	if providerErr := c.Query("error"); providerErr != "" {
		responses.Fail(c, http.StatusUnauthorized, nil, "Sign-in was cancelled: "+providerErr)
		return
	}
	code := c.Query("code")
	if code == "" {
		responses.Fail(c, http.StatusBadRequest, nil, "Missing code")
		return
	}

	token, err := h.oauthConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		logging.Logger.WithError(err).Warn("sso code exchange failed")
		responses.Fail(c, http.StatusUnauthorized, nil, "Token exchange failed")
		return
	}

	user, pair, err := h.authService.SignIn(c.Request.Context(), token)
	if err != nil {
		responses.Error(c, err, "Failed to sign in")
		return
	}
	logging.Logger.WithField("user", user.Email).Info("user signed in")

	h.setSessionCookies(c, pair)
	responses.Success(c, http.StatusOK, gin.H{
		"access_token": pair.AccessToken,
		"user":         user,
	}, "Signed in successfully")
}

// Refresh handles POST /api/v1/auth/refresh
func (h *SSOHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshTokenCookieName)
	if err != nil {
		responses.Fail(c, http.StatusUnauthorized, err, "Missing refresh token")
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.clearSessionCookies(c)
		responses.Error(c, err, "Invalid or expired refresh token")
		return
	}

	h.setSessionCookies(c, pair)
	responses.Success(c, http.StatusOK, gin.H{"access_token": pair.AccessToken}, "Access token refreshed successfully")
}

// Logout handles POST /api/v1/auth/logout. It is public so an expired
// access token can still end its session through the refresh cookie.
func (h *SSOHandler) Logout(c *gin.Context) {
	accessToken, _ := middlewares.AccessToken(c)
	refreshToken, _ := c.Cookie(RefreshTokenCookieName)

	err := h.authService.EndSession(c.Request.Context(), accessToken, refreshToken)
	h.clearSessionCookies(c)
	if err != nil {
		responses.Error(c, err, "Could not end session")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Logged out successfully")
}

func (h *SSOHandler) setSessionCookies(c *gin.Context, pair *services.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.AccessTokenCookie, pair.AccessToken, int(utils.AccessTokenDuration.Seconds()), "/", "", h.cookieSecure, true)
	c.SetCookie(RefreshTokenCookieName, pair.RefreshToken, int(utils.RefreshTokenDuration.Seconds()), refreshCookiePath, "", h.cookieSecure, true)
}

func (h *SSOHandler) clearSessionCookies(c *gin.Context) {
	c.SetCookie(middlewares.AccessTokenCookie, "", -1, "/", "", h.cookieSecure, true)
	c.SetCookie(RefreshTokenCookieName, "", -1, refreshCookiePath, "", h.cookieSecure, true)
}
