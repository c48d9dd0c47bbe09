package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
	"jobcard_portal/internal/utils"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"-"`
	SessionID    string `json:"-"`
}

type AuthService struct {
	users         UserStore
	sessions      SessionStore
	identity      IdentityProvider
	accessSecret  []byte
	refreshSecret []byte
	allowedDomain string
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	identity IdentityProvider,
	accessSecret, refreshSecret []byte,
	allowedDomain string,
) *AuthService {
	return &AuthService{
		users:         users,
		sessions:      sessions,
		identity:      identity,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		allowedDomain: allowedDomain,
	}
}

// SignIn finishes an SSO login: it reads the identity behind token and
// opens a session for the matching user.
func (s *AuthService) SignIn(ctx context.Context, token *oauth2.Token) (*models.User, *TokenPair, error) {
	identity, err := s.identity.FetchIdentity(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch identity: %w", err)
	}
	return s.CompleteSignIn(ctx, identity)
}

// CompleteSignIn creates the user on first sign-in, refreshes the profile
// otherwise, and issues a token pair.
func (s *AuthService) CompleteSignIn(ctx context.Context, identity *Identity) (*models.User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, nil, apperr.Unauthorized("identity provider returned no email")
	}
	if identity.EmailVerified != nil && !*identity.EmailVerified {
		return nil, nil, apperr.Unauthorized("email %s is not verified", email)
	}
	if s.allowedDomain != "" && utils.EmailDomain(email) != s.allowedDomain {
		return nil, nil, apperr.Forbidden("accounts from %s are not allowed", utils.EmailDomain(email))
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		user = &models.User{
			Email:       email,
			DisplayName: identity.Name,
			Subject:     identity.Subject,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
	}
	if err := s.users.RecordLogin(ctx, user.ID, identity.Name, identity.Subject); err != nil {
		return nil, nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.DisplayName = identity.Name

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, refresh, jti, err := utils.GenerateTokens(user.ID, s.accessSecret, s.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	if err := s.sessions.StoreSession(ctx, jti, user.ID.String()); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, SessionID: jti}, nil
}

// Authenticate resolves an access token to its user and claims.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, *utils.Claims, error) {
	claims, err := utils.VerifyJWT(accessToken, s.accessSecret)
	if err != nil {
		return nil, nil, apperr.Unauthorized("invalid or expired token")
	}
	if err := s.checkSession(ctx, claims.ID); err != nil {
		return nil, nil, err
	}

	user, err := s.loadUser(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// Refresh rotates a refresh token: the old session is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := utils.VerifyJWT(refreshToken, s.refreshSecret)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired refresh token")
	}
	if err := s.checkSession(ctx, claims.ID); err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.Logout(ctx, claims.ID); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// EndSession revokes the session behind accessToken, or behind
// refreshToken once the access token has expired. Without a verifiable
// token there is nothing to revoke.
func (s *AuthService) EndSession(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := utils.VerifyJWT(accessToken, s.accessSecret)
	if err != nil {
		if claims, err = utils.VerifyJWT(refreshToken, s.refreshSecret); err != nil {
			return nil
		}
	}
	return s.Logout(ctx, claims.ID)
}

// Logout revokes both tokens of the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Blacklist(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *AuthService) checkSession(ctx context.Context, jti string) error {
	revoked, err := s.sessions.IsBlacklisted(ctx, jti)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if revoked {
		return apperr.Unauthorized("session has been revoked")
	}

	live, err := s.sessions.SessionExists(ctx, jti)
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if !live {
		return apperr.Unauthorized("session has ended")
	}
	return nil
}

func (s *AuthService) loadUser(ctx context.Context, claims *utils.Claims) (*models.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthorized("invalid token subject")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, apperr.Unauthorized("user no longer exists")
	}
	return user, nil
}
