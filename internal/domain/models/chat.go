package models

import (
	"encoding/json"
	"fmt"
)

// Message roles as stored in the persisted session collection.
const (
	RoleUser   = "user"
	RoleAI     = "ai"
	RoleSystem = "system"
)

// Source is a grounding citation returned alongside generated text when the
// model used web retrieval.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// FileInfo describes an attachment on a user query. File content is not
// retained in message history.
type FileInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// ChatMessage is one of *UserQueryMessage, *AIResponseMessage or *SystemMessage.
// The set is closed: the unexported marker keeps other packages from adding
// variants, so a type switch over the three is exhaustive.
type ChatMessage interface {
	MessageID() string
	MessageTimestamp() int64
	Role() string
	chatMessage()
}

// UserQueryMessage is a query typed by the user.
type UserQueryMessage struct {
	ID        string     `json:"id"`
	Timestamp int64      `json:"timestamp"`
	QueryText string     `json:"queryText"`
	FilesInfo []FileInfo `json:"filesInfo,omitempty"`
}

// AIResponseMessage is a model response. Text starting with "Error:" marks a
// failed call and never carries sources.
type AIResponseMessage struct {
	ID             string   `json:"id"`
	Timestamp      int64    `json:"timestamp"`
	Text           string   `json:"text"`
	Sources        []Source `json:"sources,omitempty"`
	SuggestedTitle string   `json:"suggestedTitle,omitempty"`
	FileName       string   `json:"fileName,omitempty"`
}

// SystemMessage is a transient notice shown in the conversation.
type SystemMessage struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Text      string `json:"text"`
}

func (m *UserQueryMessage) MessageID() string        { return m.ID }
func (m *UserQueryMessage) MessageTimestamp() int64  { return m.Timestamp }
func (m *UserQueryMessage) Role() string             { return RoleUser }
func (*UserQueryMessage) chatMessage()               {}
func (m *AIResponseMessage) MessageID() string       { return m.ID }
func (m *AIResponseMessage) MessageTimestamp() int64 { return m.Timestamp }
func (m *AIResponseMessage) Role() string            { return RoleAI }
func (*AIResponseMessage) chatMessage()              {}
func (m *SystemMessage) MessageID() string           { return m.ID }
func (m *SystemMessage) MessageTimestamp() int64     { return m.Timestamp }
func (m *SystemMessage) Role() string                { return RoleSystem }
func (*SystemMessage) chatMessage()                  {}

// IsError reports whether the response records a failed inference call.
func (m *AIResponseMessage) IsError() bool {
	return len(m.Text) >= 6 && m.Text[:6] == "Error:"
}

// Messages is an ordered message list that encodes each element with a
// "role" discriminator.
type Messages []ChatMessage

// MarshalJSON writes each message as a flat object carrying its role.
func (ms Messages) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(ms))
	for _, m := range ms {
		var (
			data []byte
			err  error
		)
		switch msg := m.(type) {
		case *UserQueryMessage:
			data, err = json.Marshal(struct {
				Role string `json:"role"`
				*UserQueryMessage
			}{RoleUser, msg})
		case *AIResponseMessage:
			data, err = json.Marshal(struct {
				Role string `json:"role"`
				*AIResponseMessage
			}{RoleAI, msg})
		case *SystemMessage:
			data, err = json.Marshal(struct {
				Role string `json:"role"`
				*SystemMessage
			}{RoleSystem, msg})
		default:
			return nil, fmt.Errorf("unsupported chat message type %T", m)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes messages by their role. Unknown roles are rejected.
func (ms *Messages) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make(Messages, 0, len(raw))
	for i, item := range raw {
		var head struct {
			Role string `json:"role"`
		}
		if err := json.Unmarshal(item, &head); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}

		var msg ChatMessage
		switch head.Role {
		case RoleUser:
			msg = &UserQueryMessage{}
		case RoleAI:
			msg = &AIResponseMessage{}
		case RoleSystem:
			msg = &SystemMessage{}
		default:
			return fmt.Errorf("message %d: unknown role %q", i, head.Role)
		}
		if err := json.Unmarshal(item, msg); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		result = append(result, msg)
	}

	*ms = result
	return nil
}

// ChatSession is a titled conversation. Messages are append-only while the
// session is alive; UpdatedAt moves on every append and rename.
type ChatSession struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
	Messages  Messages `json:"messages"`
}

func (s *ChatSession) RecordID() string     { return s.ID }
func (s *ChatSession) RecencyMillis() int64 { return s.UpdatedAt }

// History returns a copy of the message list.
func (s *ChatSession) History() []ChatMessage {
	out := make([]ChatMessage, len(s.Messages))
	copy(out, s.Messages)
	return out
}
