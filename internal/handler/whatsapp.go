package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/untangled/link-server-go/internal/agent"
	apperrors "github.com/untangled/link-server-go/internal/errors"
	"github.com/untangled/link-server-go/internal/model"
	"github.com/untangled/link-server-go/internal/service"
	"github.com/untangled/link-server-go/internal/whatsapp"
)

// WhatsAppHandler bridges the channel webhook to the link flow and the
// agent backend. The webhook always answers 200: the Graph API retries
// and eventually disables subscriptions that keep failing.
type WhatsAppHandler struct {
	links       *service.LinkService
	messenger   whatsapp.Messenger
	agent       agent.Client
	verifyToken string
}

func NewWhatsAppHandler(
	links *service.LinkService,
	messenger whatsapp.Messenger,
	agentClient agent.Client,
	verifyToken string,
) *WhatsAppHandler {
	return &WhatsAppHandler{
		links:       links,
		messenger:   messenger,
		agent:       agentClient,
		verifyToken: verifyToken,
	}
}

// GET /webhook: the Graph API subscription handshake.
func (h *WhatsAppHandler) VerifyWebhook(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "" || token == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if mode != "subscribe" || token != h.verifyToken {
		log.Warn().Str("mode", mode).Msg("webhook verification rejected")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// POST /webhook
func (h *WhatsAppHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var payload whatsapp.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("invalid webhook payload")
		h.ok(w)
		return
	}

	msg := payload.FirstMessage()
	phone := payload.SenderPhone()
	if msg == nil || phone == "" {
		h.ok(w)
		return
	}

	name := payload.SenderName()

	log.Info().
		Str("from", phone).
		Str("type", msg.Type).
		Msg("received channel message")

	replyText := h.buildReply(r, msg, phone, name)
	if replyText == "" {
		h.ok(w)
		return
	}

	if err := h.messenger.SendText(r.Context(), phone, replyText); err != nil {
		log.Error().Err(err).Str("to", phone).Msg("failed to send channel reply")
	}

	h.ok(w)
}

func (h *WhatsAppHandler) buildReply(r *http.Request, msg *whatsapp.Message, phone, name string) string {
	ctx := r.Context()

	cred, err := h.links.VerifyWhatsAppAuth(ctx, phone)
	if apperrors.HasCode(err, apperrors.ErrCodeNoCredential) {
		url, linkErr := h.links.WhatsAppAuthLink(ctx, phone)
		if linkErr != nil {
			log.Error().Err(linkErr).Str("phone", phone).Msg("failed to create auth link")
			return "Something went wrong, please try again later."
		}
		return fmt.Sprintf("Hello %s, please authenticate here: %s", displayName(name), url)
	}
	if err != nil {
		log.Error().Err(err).Str("phone", phone).Msg("failed to resolve credential")
		return "Something went wrong, please try again later."
	}

	switch msg.Type {
	case "text":
		return h.textReply(r, msg, cred)
	case "document", "image":
		return h.mediaReply(r, msg, cred)
	default:
		return "Unsupported message type."
	}
}

func (h *WhatsAppHandler) textReply(r *http.Request, msg *whatsapp.Message, cred *model.PhoneCredential) string {
	if msg.Text == nil || msg.Text.Body == "" {
		return "No text content found in message."
	}

	answer, err := h.agent.Chat(r.Context(), cred.Token, msg.Text.Body, cred.SessionID)
	if err != nil {
		log.Error().Err(err).Msg("agent chat failed")
		return "Sorry, I could not process your message right now."
	}
	if answer == "" {
		return "No response from chat session."
	}
	return answer
}

func (h *WhatsAppHandler) mediaReply(r *http.Request, msg *whatsapp.Message, cred *model.PhoneCredential) string {
	var media *whatsapp.Media
	if msg.Image != nil {
		media = msg.Image
	} else if msg.Document != nil {
		media = msg.Document
	}
	if media == nil || media.ID == "" {
		return "No attachment found in message."
	}

	data, err := h.messenger.DownloadMedia(r.Context(), media.ID)
	if err != nil {
		log.Error().Err(err).Str("mediaId", media.ID).Msg("media download failed")
		return "File upload failed, please try again."
	}

	filename := media.Filename
	if filename == "" {
		if msg.Type == "image" {
			filename = "image.jpg"
		} else {
			filename = "document.pdf"
		}
	}

	if err := h.agent.UploadDocument(r.Context(), cred.Token, filename, data); err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("agent upload failed")
		return "File upload failed, please try again."
	}

	return fmt.Sprintf("File %s uploaded!", filename)
}

func (h *WhatsAppHandler) ok(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
