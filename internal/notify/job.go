package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatSender delivers a chat message to a phone number in international format.
type ChatSender interface {
	SendChat(ctx context.Context, to, body string) error
}

// Channel names an outbound transport.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelChat  Channel = "chat"
)

// ChatMessage is a chat notification.
type ChatMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// Job is one notification on its way to a single recipient.
type Job struct {
	ID        string        `json:"id"`
	Channel   Channel       `json:"channel"`
	Email     *EmailMessage `json:"email,omitempty"`
	Chat      *ChatMessage  `json:"chat,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewEmailJob wraps msg in a job.
func NewEmailJob(msg EmailMessage) Job {
	return Job{ID: uuid.NewString(), Channel: ChannelEmail, Email: &msg, CreatedAt: time.Now().UTC()}
}

// NewChatJob wraps a chat message in a job.
func NewChatJob(to, body string) Job {
	return Job{ID: uuid.NewString(), Channel: ChannelChat, Chat: &ChatMessage{To: to, Body: body}, CreatedAt: time.Now().UTC()}
}

// Recipient returns the address or number the job targets.
func (j Job) Recipient() string {
	switch {
	case j.Channel == ChannelEmail && j.Email != nil:
		return j.Email.To
	case j.Channel == ChannelChat && j.Chat != nil:
		return j.Chat.To
	default:
		return ""
	}
}

// DedupeKey identifies the content of a job independent of its ID, so the same
// confirmation sent twice to the same recipient yields the same key.
func (j Job) DedupeKey() string {
	h := sha256.New()
	h.Write([]byte(j.Channel))
	h.Write([]byte{0})
	h.Write([]byte(j.Recipient()))
	h.Write([]byte{0})
	switch {
	case j.Email != nil:
		h.Write([]byte(j.Email.Subject))
		h.Write([]byte{0})
		h.Write([]byte(j.Email.Body))
	case j.Chat != nil:
		h.Write([]byte(j.Chat.Body))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (j Job) validate() error {
	switch j.Channel {
	case ChannelEmail:
		if j.Email == nil || j.Email.To == "" {
			return fmt.Errorf("notify: email job %s has no recipient", j.ID)
		}
	case ChannelChat:
		if j.Chat == nil || j.Chat.To == "" {
			return fmt.Errorf("notify: chat job %s has no recipient", j.ID)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChannel, j.Channel)
	}
	return nil
}

func encodeJob(j Job) (string, error) {
	body, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("notify: encode job: %w", err)
	}
	return string(body), nil
}

func decodeJob(body string) (Job, error) {
	var j Job
	if err := json.Unmarshal([]byte(body), &j); err != nil {
		return Job{}, fmt.Errorf("notify: decode job: %w", err)
	}
	return j, nil
}
