package handler

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/untangled/link-server-go/internal/audit"
	apperrors "github.com/untangled/link-server-go/internal/errors"
	"github.com/untangled/link-server-go/internal/service"
)

const minPasswordLength = 8

type AuthHandler struct {
	authService *service.AuthService
	linkService *service.LinkService
}

func NewAuthHandler(authService *service.AuthService, linkService *service.LinkService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		linkService: linkService,
	}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/signin", h.Signin)
	r.Get("/google", h.Google)
	r.Get("/google/callback", h.GoogleCallback)
	r.Post("/whatsapp/start", h.StartWhatsAppLink)
	r.Get("/whatsapp/token", h.WhatsAppToken)

	return r
}

type credentialsRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	SessionID string `json:"sessionId"`
}

func (req *credentialsRequest) validate() error {
	if req.Email == "" {
		return apperrors.MissingRequired("email")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apperrors.InvalidInput("email", "must be a valid email address")
	}
	if req.Password == "" {
		return apperrors.MissingRequired("password")
	}
	if len(req.Password) < minPasswordLength {
		return apperrors.InvalidInput("password", "must be at least 8 characters")
	}
	return nil
}

// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authService.Signup(r.Context(), req.Email, req.Password, req.SessionID)
	if err != nil {
		log.Warn().Err(err).Msg("signup failed")
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventSignup,
		UserID: result.User.ID,
		Details: map[string]interface{}{
			"linked": req.SessionID != "",
		},
	})

	writeJSON(w, http.StatusCreated, result)
}

// POST /auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authService.Signin(r.Context(), req.Email, req.Password, req.SessionID)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type: audit.EventSigninFailure,
			Details: map[string]interface{}{
				"code": string(apperrors.GetCode(err)),
			},
		})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventSigninSuccess,
		UserID: result.User.ID,
		Details: map[string]interface{}{
			"linked": req.SessionID != "",
		},
	})

	writeJSON(w, http.StatusOK, result)
}

// GET /auth/google?sessionId=...
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	url, err := h.authService.GoogleAuthURL(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Msg("failed to build google auth url")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// GET /auth/google/callback?code=...&state=...
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperrors.MissingRequired("code"))
		return
	}
	state := r.URL.Query().Get("state")

	result, err := h.authService.GoogleCallback(r.Context(), code, state)
	if err != nil {
		log.Warn().Err(err).Msg("google callback failed")
		writeError(w, err)
		return
	}

	if result.User.PhoneNumber != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:        audit.EventPhoneLinked,
			UserID:      result.User.ID,
			PhoneNumber: *result.User.PhoneNumber,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

type startLinkRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// POST /auth/whatsapp/start
func (h *AuthHandler) StartWhatsAppLink(w http.ResponseWriter, r *http.Request) {
	var req startLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.PhoneNumber == "" {
		writeError(w, apperrors.MissingRequired("phoneNumber"))
		return
	}

	url, err := h.linkService.WhatsAppAuthLink(r.Context(), req.PhoneNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:        audit.EventLinkStarted,
		PhoneNumber: req.PhoneNumber,
	})

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// GET /auth/whatsapp/token?phoneNumber=...
func (h *AuthHandler) WhatsAppToken(w http.ResponseWriter, r *http.Request) {
	phoneNumber := r.URL.Query().Get("phoneNumber")
	if phoneNumber == "" {
		writeError(w, apperrors.MissingRequired("phoneNumber"))
		return
	}

	cred, err := h.linkService.VerifyWhatsAppAuth(r.Context(), phoneNumber)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": cred.Token})
}
