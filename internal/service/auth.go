package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/untangled/link-server-go/internal/errors"
	"github.com/untangled/link-server-go/internal/google"
	"github.com/untangled/link-server-go/internal/model"
	"github.com/untangled/link-server-go/internal/repository"
	"github.com/untangled/link-server-go/internal/token"
	"github.com/untangled/link-server-go/internal/util"
)

// Provider is the slice of the identity provider this service needs.
type Provider interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*google.Tokens, error)
	FetchProfile(ctx context.Context, accessToken string) (*google.Profile, error)
}

// AuthResult is returned by every operation that signs a user in.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService orchestrates signup, signin, and the Google OAuth legs,
// completing any pending channel link along the way.
type AuthService struct {
	users    repository.UserRepository
	links    *LinkService
	issuer   token.Issuer
	provider Provider

	bcryptCost int
}

func NewAuthService(
	users repository.UserRepository,
	links *LinkService,
	issuer token.Issuer,
	provider Provider,
	bcryptCost int,
) *AuthService {
	return &AuthService{
		users:      users,
		links:      links,
		issuer:     issuer,
		provider:   provider,
		bcryptCost: bcryptCost,
	}
}

// Signup creates a password user. When a link session id is supplied the
// new account is bound to the session's phone number and a phone
// credential is written for the bot to pick up.
func (s *AuthService) Signup(ctx context.Context, email, password, sessionID string) (*AuthResult, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.UserAlreadyExists()
	}

	hash, err := util.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password").WithCause(err)
	}

	user, err := s.users.Create(ctx, model.CreateUserParams{Email: email, PasswordHash: hash})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.UserAlreadyExists()
		}
		return nil, apperrors.Database(err)
	}

	signed, err := s.issuer.Sign(user.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token").WithCause(err)
	}

	if sessionID != "" {
		session, err := s.links.claimSession(ctx, sessionID, nil)
		if err != nil {
			return nil, err
		}
		if err := s.completeLink(ctx, user, session, signed); err != nil {
			return nil, err
		}
	}

	log.Info().
		Int64("userId", user.ID).
		Bool("linked", sessionID != "").
		Msg("user signed up")

	return &AuthResult{Token: signed, User: user}, nil
}

// Signin authenticates a password user. When a link session id is
// supplied the session is resolved before the password is verified, and a
// phone number conflict fails the operation without touching the
// password at all.
func (s *AuthService) Signin(ctx context.Context, email, password, sessionID string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.UserNotFound()
	}

	if sessionID != "" {
		// Resolved before the password so a phone conflict fails fast,
		// but not consumed yet: a wrong password must leave the session
		// usable for a retry.
		if _, err := s.links.resolveSession(ctx, sessionID, user.PhoneNumber); err != nil {
			return nil, err
		}
	}

	if user.PasswordHash == nil || !util.CheckPasswordHash(password, *user.PasswordHash) {
		return nil, apperrors.InvalidPassword()
	}

	signed, err := s.issuer.Sign(user.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token").WithCause(err)
	}

	var session *model.LinkSession
	if sessionID != "" {
		session, err = s.links.consumeSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if err := s.completeLink(ctx, user, session, signed); err != nil {
			return nil, err
		}
	}

	log.Info().
		Int64("userId", user.ID).
		Bool("linked", session != nil).
		Msg("user signed in")

	return &AuthResult{Token: signed, User: user}, nil
}

// GoogleAuthURL returns the provider authorization URL. When a session id
// is supplied a link session with an empty phone number is created first;
// the WhatsApp flow sharing the same id fills the phone in later.
func (s *AuthService) GoogleAuthURL(ctx context.Context, sessionID string) (string, error) {
	if sessionID != "" {
		if err := s.links.beginSession(ctx, model.LinkSession{SessionID: sessionID}); err != nil {
			return "", err
		}
	}

	state, err := google.EncodeState(sessionID)
	if err != nil {
		return "", apperrors.Internal("Failed to generate OAuth state").WithCause(err)
	}

	return s.provider.AuthURL(state), nil
}

// GoogleCallback exchanges the authorization code, upserts the user by
// email, and completes any link session riding in the state parameter.
func (s *AuthService) GoogleCallback(ctx context.Context, code, state string) (*AuthResult, error) {
	tokens, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, apperrors.ProviderTokenExchangeFailed(err)
	}

	profile, err := s.provider.FetchProfile(ctx, tokens.AccessToken)
	if err != nil {
		return nil, apperrors.ProviderProfileFetchFailed(err)
	}

	var session *model.LinkSession
	if sessionID := google.DecodeState(state); sessionID != "" {
		session, err = s.links.claimSession(ctx, sessionID, nil)
		if err != nil {
			return nil, err
		}
	}

	params := model.UpsertGoogleUserParams{
		Email:              profile.Email,
		GoogleRefreshToken: tokens.RefreshToken,
	}
	if session != nil {
		params.PhoneNumber = &session.PhoneNumber
	}

	user, err := s.users.UpsertGoogleUser(ctx, params)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	signed, err := s.issuer.Sign(user.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token").WithCause(err)
	}

	if session != nil {
		if err := s.links.issueCredential(ctx, session, signed); err != nil {
			return nil, err
		}
	}

	log.Info().
		Int64("userId", user.ID).
		Str("email", user.Email).
		Bool("linked", session != nil).
		Msg("google callback completed")

	return &AuthResult{Token: signed, User: user}, nil
}

// completeLink backfills the user's phone number (first link only) and
// publishes the phone credential the bot polls for.
func (s *AuthService) completeLink(ctx context.Context, user *model.User, session *model.LinkSession, signed string) error {
	if user.PhoneNumber == nil || *user.PhoneNumber == "" {
		if err := s.users.UpdatePhoneNumber(ctx, user.ID, session.PhoneNumber); err != nil {
			return apperrors.Database(err)
		}
		phone := session.PhoneNumber
		user.PhoneNumber = &phone
	}

	return s.links.issueCredential(ctx, session, signed)
}
