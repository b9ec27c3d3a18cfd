package model

// LinkSession correlates a random session id with a WhatsApp phone number
// for the duration of a web auth flow. Short-lived; consumed exactly once.
//
// The phone number is empty for web-initiated sessions until the WhatsApp
// side binds it. Not to be confused with the agent chat session elsewhere
// in the product.
type LinkSession struct {
	SessionID   string `json:"sessionId"`
	PhoneNumber string `json:"phoneNumber"`
}

// PhoneCredential maps a phone number to its currently valid bearer token.
// Long-lived; upserted on every successful link, read by the channel
// bridge on every inbound message.
type PhoneCredential struct {
	PhoneNumber string `json:"phoneNumber"`
	Token       string `json:"token"`
	SessionID   string `json:"sessionId,omitempty"`
}
