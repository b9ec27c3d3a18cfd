package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/untangled/link-server-go/internal/util"
)

const signatureHeader = "X-Hub-Signature-256"

// WebhookSignatureMiddleware verifies the Meta webhook payload signature:
// a hex HMAC-SHA256 of the raw body under the app secret, prefixed with
// "sha256=". The body is restored for the downstream handler.
type WebhookSignatureMiddleware struct {
	appSecret string
}

func NewWebhookSignatureMiddleware(appSecret string) *WebhookSignatureMiddleware {
	return &WebhookSignatureMiddleware{appSecret: appSecret}
}

func (m *WebhookSignatureMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.appSecret == "" {
			log.Warn().Msg("webhook signature verification bypassed: WHATSAPP_APP_SECRET is not configured")
			next.ServeHTTP(w, r)
			return
		}

		signature := r.Header.Get(signatureHeader)
		if !strings.HasPrefix(signature, "sha256=") {
			log.Warn().Msg("webhook signature middleware: missing or malformed signature header")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing signature",
			})
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error().Err(err).Msg("webhook signature middleware: failed to read body")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Failed to read request body",
			})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		computed := "sha256=" + util.HmacSHA256(m.appSecret, string(body))
		if !util.ConstantTimeEqual(computed, signature) {
			log.Warn().Msg("webhook signature middleware: invalid signature")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid signature",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
