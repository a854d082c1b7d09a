// Package line is a minimal client for the LINE Messaging API: webhook
// payload types, signature verification, and the reply endpoint.
package line

const (
	EventTypeMessage = "message"

	MessageTypeText  = "text"
	MessageTypeImage = "image"

	SourceTypeUser  = "user"
	SourceTypeGroup = "group"
	SourceTypeRoom  = "room"
)

// WebhookRequest is the body LINE POSTs to the webhook endpoint.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

type Event struct {
	Type       string        `json:"type"`
	ReplyToken string        `json:"replyToken"`
	Timestamp  int64         `json:"timestamp"`
	Source     Source        `json:"source"`
	Message    *EventMessage `json:"message,omitempty"`
}

type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

type EventMessage struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Text    string   `json:"text,omitempty"`
	Mention *Mention `json:"mention,omitempty"`
}

type Mention struct {
	Mentionees []Mentionee `json:"mentionees"`
}

type Mentionee struct {
	Index  int    `json:"index"`
	Length int    `json:"length"`
	UserID string `json:"userId,omitempty"`
	IsSelf bool   `json:"isSelf,omitempty"`
}

// Message is an outgoing reply message.
type Message struct {
	Type               string `json:"type"`
	Text               string `json:"text,omitempty"`
	OriginalContentURL string `json:"originalContentUrl,omitempty"`
	PreviewImageURL    string `json:"previewImageUrl,omitempty"`
}

func NewTextMessage(text string) Message {
	return Message{Type: MessageTypeText, Text: text}
}

func NewImageMessage(originalURL, previewURL string) Message {
	return Message{Type: MessageTypeImage, OriginalContentURL: originalURL, PreviewImageURL: previewURL}
}
