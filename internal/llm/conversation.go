package llm

import (
	"strings"
	"time"

	"google.golang.org/genai"
)

// Message roles. System messages steer the conversation locally but are
// filtered out when formatting history for the Gemini API, which only
// accepts user and model turns.
const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
)

// templateContextSentinel marks an injected template catalog block so the
// injection stays idempotent across turns.
const templateContextSentinel = "TEMPLATE INFORMATION"

// Message is one turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered message history with its last-touched time.
type Conversation struct {
	ID       string
	Messages []Message
	Touched  time.Time
}

// Append adds a message and bumps the touched time.
func (c *Conversation) Append(m Message) {
	c.Messages = append(c.Messages, m)
	c.Touched = time.Now().UTC()
}

// EnsureSystemPrompt seeds an empty conversation with a system message.
// Conversations that already have history are left untouched.
func (c *Conversation) EnsureSystemPrompt(prompt string) {
	if len(c.Messages) > 0 {
		return
	}
	c.Append(Message{Role: RoleSystem, Content: prompt})
}

// HasTemplateContext reports whether a template catalog block was already
// injected into this conversation.
func (c *Conversation) HasTemplateContext() bool {
	for _, m := range c.Messages {
		if m.Role == RoleSystem && strings.Contains(m.Content, templateContextSentinel) {
			return true
		}
	}
	return false
}

// InsertSystem inserts a system message after any existing leading system
// messages, so an original system prompt keeps its position.
func (c *Conversation) InsertSystem(content string) {
	idx := 0
	for idx < len(c.Messages) && c.Messages[idx].Role == RoleSystem {
		idx++
	}
	msg := Message{Role: RoleSystem, Content: content}
	c.Messages = append(c.Messages[:idx], append([]Message{msg}, c.Messages[idx:]...)...)
	c.Touched = time.Now().UTC()
}

// GeminiContents formats the history for the Gemini API. System messages
// are folded into the first user turn since the API rejects a system role
// in chat history.
func (c *Conversation) GeminiContents() []*genai.Content {
	var systemParts []string
	var contents []*genai.Content
	for _, m := range c.Messages {
		if m.Role == RoleSystem {
			systemParts = append(systemParts, m.Content)
			continue
		}
		text := m.Content
		if m.Role == RoleUser && len(systemParts) > 0 {
			text = strings.Join(systemParts, "\n\n") + "\n\n" + text
			systemParts = nil
		}
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
			Role:  m.Role,
		})
	}
	return contents
}
