package whatsapp

// Webhook payload shapes as delivered by the Graph API. Only the fields
// the bridge reads are declared.

type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Contact struct {
	Profile Profile `json:"profile"`
	WaID    string  `json:"wa_id"`
}

type Profile struct {
	Name string `json:"name"`
}

type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *Text  `json:"text,omitempty"`
	Image     *Media `json:"image,omitempty"`
	Document  *Media `json:"document,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

type Media struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
	Filename string `json:"filename,omitempty"`
}

// FirstMessage returns the first message in the payload, or nil.
func (p *WebhookPayload) FirstMessage() *Message {
	v := p.firstValue()
	if v == nil || len(v.Messages) == 0 {
		return nil
	}
	return &v.Messages[0]
}

// FirstContact returns the first contact in the payload, or nil.
func (p *WebhookPayload) FirstContact() *Contact {
	v := p.firstValue()
	if v == nil || len(v.Contacts) == 0 {
		return nil
	}
	return &v.Contacts[0]
}

// SenderPhone resolves the sender from the message, falling back to the
// contact's wa_id.
func (p *WebhookPayload) SenderPhone() string {
	if msg := p.FirstMessage(); msg != nil && msg.From != "" {
		return msg.From
	}
	if contact := p.FirstContact(); contact != nil {
		return contact.WaID
	}
	return ""
}

// SenderName returns the contact's profile name, or "".
func (p *WebhookPayload) SenderName() string {
	if contact := p.FirstContact(); contact != nil {
		return contact.Profile.Name
	}
	return ""
}

func (p *WebhookPayload) firstValue() *WebhookValue {
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return nil
	}
	return &p.Entry[0].Changes[0].Value
}
