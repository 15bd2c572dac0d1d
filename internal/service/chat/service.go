package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/chat"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
)

var (
	ErrSystemPromptRequired = errors.New("system prompt is required")
	ErrSessionNotFound      = errors.New("session not found")
)

// Conversation is the ordered message history of one session. The first
// message is always the system persona and is never removed.
type Conversation struct {
	mu       sync.RWMutex
	info     chat.Session
	messages []chat.Message
}

// NewConversation seeds a conversation with its persona prompt.
func NewConversation(sessionID, systemPrompt string) (*Conversation, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, ErrSystemPromptRequired
	}

	messages := make([]chat.Message, 0, 16)
	messages = append(messages, chat.SystemMessage(systemPrompt))

	return &Conversation{
		info:     chat.Session{ID: sessionID, CreatedAt: time.Now().UTC()},
		messages: messages,
	}, nil
}

// AppendUser stores a user message and returns it.
func (c *Conversation) AppendUser(content string) chat.Message {
	return c.append(chat.UserMessage(content))
}

// AppendAssistant stores an assistant message and returns it.
func (c *Conversation) AppendAssistant(content string) chat.Message {
	return c.append(chat.AssistantMessage(content))
}

func (c *Conversation) append(msg chat.Message) chat.Message {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return msg
}

// History returns a snapshot; mutating it does not affect the conversation.
func (c *Conversation) History() []chat.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	copied := make([]chat.Message, len(c.messages))
	copy(copied, c.messages)
	return copied
}

// Len reports the number of stored messages including the persona.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Info returns the session descriptor.
func (c *Conversation) Info() chat.Session {
	return c.info
}

// Service tracks the conversations of live connections.
type Service struct {
	mu           sync.RWMutex
	systemPrompt string
	sessions     map[string]*Conversation
}

// NewService bootstraps the in-memory registry; every conversation it
// creates starts with systemPrompt.
func NewService(systemPrompt string) *Service {
	return &Service{
		systemPrompt: systemPrompt,
		sessions:     make(map[string]*Conversation),
	}
}

// CreateSession provisions a conversation under a fresh session id.
func (s *Service) CreateSession(_ context.Context) (*Conversation, error) {
	conv, err := NewConversation(turnlog.NewSessionID(time.Now()), s.systemPrompt)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[conv.info.ID] = conv
	s.mu.Unlock()

	return conv, nil
}

// GetSession retrieves a live conversation.
func (s *Service) GetSession(_ context.Context, sessionID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return conv, nil
}

// EndSession forgets a conversation once its connection is gone.
func (s *Service) EndSession(_ context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// ActiveCount reports how many conversations are live.
func (s *Service) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
