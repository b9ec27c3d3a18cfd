package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/untangled/link-server-go/internal/errors"
	"github.com/untangled/link-server-go/internal/linkstore"
	"github.com/untangled/link-server-go/internal/model"
)

// LinkService owns the ephemeral link flow shared by the web API and the
// channel bridge: minting link sessions, claiming them, and publishing
// phone credentials. Both processes are stateless and meet only here.
type LinkService struct {
	store linkstore.Store

	webBaseURL string
	linkTTL    time.Duration
	credTTL    time.Duration
}

func NewLinkService(store linkstore.Store, webBaseURL string, linkTTL, credTTL time.Duration) *LinkService {
	return &LinkService{
		store:      store,
		webBaseURL: webBaseURL,
		linkTTL:    linkTTL,
		credTTL:    credTTL,
	}
}

// WhatsAppAuthLink mints a link session for an unauthenticated phone
// number and returns the deep link the user opens in a browser.
func (s *LinkService) WhatsAppAuthLink(ctx context.Context, phoneNumber string) (string, error) {
	session := model.LinkSession{
		SessionID:   uuid.NewString(),
		PhoneNumber: phoneNumber,
	}

	if err := s.store.PutLinkSession(ctx, session, s.linkTTL); err != nil {
		return "", apperrors.StoreUnavailable(err)
	}

	log.Info().
		Str("sessionId", session.SessionID).
		Str("phoneNumber", phoneNumber).
		Msg("whatsapp auth link created")

	return fmt.Sprintf("%s/whatsapp/auth?sessionId=%s", s.webBaseURL, url.QueryEscape(session.SessionID)), nil
}

// VerifyWhatsAppAuth resolves a phone number to its credential. Pure
// read; linking completes only when a web flow has written the
// credential.
func (s *LinkService) VerifyWhatsAppAuth(ctx context.Context, phoneNumber string) (*model.PhoneCredential, error) {
	cred, err := s.store.GetPhoneCredential(ctx, phoneNumber)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	if cred == nil {
		return nil, apperrors.NoCredential()
	}
	return cred, nil
}

// beginSession stores a session as-is, used by the OAuth start leg where
// the phone number is not known yet.
func (s *LinkService) beginSession(ctx context.Context, session model.LinkSession) error {
	if err := s.store.PutLinkSession(ctx, session, s.linkTTL); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

// resolveSession reads a link session without consuming it. Sessions
// whose phone number is still empty count as not found but are left in
// the store: the WhatsApp side may yet bind them. When existingPhone is
// set, a differing session phone fails PHONE_MISMATCH.
func (s *LinkService) resolveSession(ctx context.Context, sessionID string, existingPhone *string) (*model.LinkSession, error) {
	session, err := s.store.GetLinkSession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	if session == nil || session.PhoneNumber == "" {
		return nil, apperrors.SessionNotFound()
	}

	if existingPhone != nil && *existingPhone != "" && *existingPhone != session.PhoneNumber {
		return nil, apperrors.PhoneMismatch()
	}

	return session, nil
}

// consumeSession claims a link session with an atomic get-and-delete: of
// two racing consumers exactly one wins and the other observes
// SESSION_NOT_FOUND.
func (s *LinkService) consumeSession(ctx context.Context, sessionID string) (*model.LinkSession, error) {
	claimed, err := s.store.ConsumeLinkSession(ctx, sessionID)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	if claimed == nil {
		return nil, apperrors.SessionNotFound()
	}
	return claimed, nil
}

// claimSession resolves and immediately claims a link session.
func (s *LinkService) claimSession(ctx context.Context, sessionID string, existingPhone *string) (*model.LinkSession, error) {
	if _, err := s.resolveSession(ctx, sessionID, existingPhone); err != nil {
		return nil, err
	}
	return s.consumeSession(ctx, sessionID)
}

// issueCredential publishes the phone credential the bot polls for.
func (s *LinkService) issueCredential(ctx context.Context, session *model.LinkSession, signed string) error {
	cred := model.PhoneCredential{
		PhoneNumber: session.PhoneNumber,
		Token:       signed,
		SessionID:   session.SessionID,
	}
	if err := s.store.PutPhoneCredential(ctx, cred, s.credTTL); err != nil {
		return apperrors.StoreUnavailable(err)
	}

	log.Info().
		Str("phoneNumber", session.PhoneNumber).
		Str("sessionId", session.SessionID).
		Msg("phone credential issued")

	return nil
}
