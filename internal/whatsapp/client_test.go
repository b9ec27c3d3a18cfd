package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendText(t *testing.T) {
	t.Run("posts message to the phone number endpoint", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotPayload textPayload

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
			w.Write([]byte(`{"messages":[{"id":"wamid.X"}]}`))
		}))
		defer srv.Close()

		c := NewClient("access-token", "pnid-1")
		c.baseURL = srv.URL

		err := c.SendText(context.Background(), "15550001", "hello")
		require.NoError(t, err)

		assert.Equal(t, "/pnid-1/messages", gotPath)
		assert.Equal(t, "Bearer access-token", gotAuth)
		assert.Equal(t, "whatsapp", gotPayload.MessagingProduct)
		assert.Equal(t, "15550001", gotPayload.To)
		assert.Equal(t, "hello", gotPayload.Text.Body)
	})

	t.Run("fails on non-2xx response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient("access-token", "pnid-1")
		c.baseURL = srv.URL

		err := c.SendText(context.Background(), "15550001", "hello")
		assert.Error(t, err)
	})
}

func TestDownloadMedia(t *testing.T) {
	t.Run("follows the metadata URL", func(t *testing.T) {
		mux := http.NewServeMux()
		srv := httptest.NewServer(mux)
		defer srv.Close()

		mux.HandleFunc("/media-1", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(mediaMeta{URL: srv.URL + "/blob"})
		})
		mux.HandleFunc("/blob", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("file-bytes"))
		})

		c := NewClient("access-token", "pnid-1")
		c.baseURL = srv.URL

		data, err := c.DownloadMedia(context.Background(), "media-1")
		require.NoError(t, err)
		assert.Equal(t, []byte("file-bytes"), data)
	})

	t.Run("fails when metadata has no URL", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := NewClient("access-token", "pnid-1")
		c.baseURL = srv.URL

		_, err := c.DownloadMedia(context.Background(), "media-1")
		assert.Error(t, err)
	})
}

func TestWebhookPayloadAccessors(t *testing.T) {
	raw := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "e1",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {"display_phone_number": "1555", "phone_number_id": "pnid"},
					"contacts": [{"profile": {"name": "Ada"}, "wa_id": "15550001"}],
					"messages": [{"from": "15550001", "id": "wamid.1", "timestamp": "0", "type": "text", "text": {"body": "hi"}}]
				}
			}]
		}]
	}`

	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.Equal(t, "15550001", payload.SenderPhone())
	assert.Equal(t, "Ada", payload.SenderName())

	msg := payload.FirstMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "text", msg.Type)
	assert.Equal(t, "hi", msg.Text.Body)

	t.Run("falls back to contact wa_id", func(t *testing.T) {
		var p WebhookPayload
		require.NoError(t, json.Unmarshal([]byte(raw), &p))
		p.Entry[0].Changes[0].Value.Messages[0].From = ""
		assert.Equal(t, "15550001", p.SenderPhone())
	})

	t.Run("empty payload yields zero values", func(t *testing.T) {
		var p WebhookPayload
		require.NoError(t, json.Unmarshal([]byte(`{"object":"whatsapp_business_account","entry":[]}`), &p))
		assert.Nil(t, p.FirstMessage())
		assert.Empty(t, p.SenderPhone())
		assert.Empty(t, p.SenderName())
	})
}
