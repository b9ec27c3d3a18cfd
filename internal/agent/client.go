// Package agent is a narrow client for the downstream assistant backend
// the bridge forwards authenticated messages to.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const requestTimeout = 30 * time.Second

// Client is the slice of the agent backend the bridge needs.
type Client interface {
	Chat(ctx context.Context, token, message, sessionID string) (string, error)
	UploadDocument(ctx context.Context, token, filename string, data []byte) error
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) Client {
	return &httpClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

// Chat forwards a message under the user's bearer token. The session id
// keeps the agent conversation continuous across webhook deliveries.
func (c *httpClient) Chat(ctx context.Context, token, message, sessionID string) (string, error) {
	encoded, err := json.Marshal(chatRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/agents/session", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Msg("agent chat failed")
		return "", fmt.Errorf("agent returned status %d", resp.StatusCode)
	}

	// The agent replies with a JSON string or a {"response": ...} object.
	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return asString, nil
	}
	var asObject struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &asObject); err == nil && asObject.Response != "" {
		return asObject.Response, nil
	}

	return string(body), nil
}

// UploadDocument stores a document in the user's workspace.
func (c *httpClient) UploadDocument(ctx context.Context, token, filename string, data []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close form writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/documents/upload", &buf)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().Int("status", resp.StatusCode).Str("filename", filename).Msg("agent upload failed")
		return fmt.Errorf("agent returned status %d", resp.StatusCode)
	}

	return nil
}
