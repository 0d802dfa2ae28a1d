// Package chat owns the running conversation: optimistic message state, the
// server-assigned conversation id, and the send/history/delete operations.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the per-conversation send state.
type State int

const (
	StateIdle State = iota
	StateSending
	StateReady
)

var (
	// ErrEmptyMessage rejects blank input before any network call.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrNotAuthenticated rejects a send without a logged-in session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Auth is the slice of the session manager the controller needs.
type Auth interface {
	IsAuthenticated() bool
}

// Controller drives one conversation at a time. A UI layer only reads its
// snapshots; all mutation goes through the operations below.
type Controller struct {
	mu             sync.Mutex
	conversationID int64
	messages       []models.Message
	state          State
	epoch          int

	client *backend.Client
	auth   Auth
	log    *zap.Logger
	onRisk func(warning string)
}

// NewController constructs a controller over the backend adapter.
func NewController(client *backend.Client, auth Auth, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{client: client, auth: auth, log: log}
}

// OnRisk registers the notifier invoked when a reply flags a risk condition.
// Risk warnings are surfaced as events, never folded into message content.
func (c *Controller) OnRisk(fn func(warning string)) {
	c.onRisk = fn
}

// ConversationID returns the bound id, or 0 while the conversation is new.
func (c *Controller) ConversationID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// State returns the current send state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns a copy of the message sequence in insertion order.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Seed appends a local assistant message (the welcome bubble). It is never
// sent to the backend and only applies to an empty conversation.
func (c *Controller) Seed(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) > 0 {
		return
	}
	c.messages = append(c.messages, models.Message{
		ID:      uuid.NewString(),
		Role:    models.MessageRoleAssistant,
		Content: content,
		Source:  models.SourceSystem,
	})
}

// SendUserMessage appends the user's message optimistically and submits it.
// Empty input is rejected before any network call. While a send is in
// flight, further sends on this conversation are silently ignored; the
// optimistic message always stays visible, so a failed send can simply be
// retried by the user.
func (c *Controller) SendUserMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if !c.auth.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return nil
	}
	c.state = StateSending
	c.messages = append(c.messages, models.Message{
		ID:      uuid.NewString(),
		Role:    models.MessageRoleUser,
		Content: text,
	})
	convID := c.conversationID
	epoch := c.epoch
	c.mu.Unlock()

	reply, err := c.client.SendChat(ctx, backend.ChatRequest{
		Message:        text,
		ConversationID: convID,
	})

	c.mu.Lock()
	if c.epoch != epoch {
		// The conversation was replaced while the send was outstanding;
		// drop the stale result.
		c.mu.Unlock()
		return nil
	}
	c.state = StateReady
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if c.conversationID == 0 && reply.ConversationID != 0 {
		c.conversationID = reply.ConversationID
	}
	c.messages = append(c.messages, models.Message{
		ID:      uuid.NewString(),
		Role:    models.MessageRoleAssistant,
		Content: reply.Content(),
		Source:  reply.Source,
	})
	notify := c.onRisk
	c.mu.Unlock()

	if reply.HasRisk && reply.RiskWarning != "" && notify != nil {
		notify(reply.RiskWarning)
	}
	return nil
}

// History fetches the conversation list. History is best-effort: any failure
// yields an empty list rather than an error.
func (c *Controller) History(ctx context.Context) []models.ConversationSummary {
	summaries, err := c.client.ListConversations(ctx)
	if err != nil {
		c.log.Debug("history unavailable", zap.Error(err))
		return nil
	}
	return summaries
}

// Open replaces the current conversation with the stored one, messages in
// exactly the order the backend returned them. Any in-flight send from the
// previous conversation is discarded when it completes.
func (c *Controller) Open(ctx context.Context, id int64) error {
	detail, err := c.client.GetConversation(ctx, id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conversationID = detail.ID
	c.messages = detail.Messages
	c.state = StateReady
	c.epoch++
	c.mu.Unlock()
	return nil
}

// Resume binds an existing conversation id without fetching its history. The
// browser adapter uses it to continue a conversation whose id the page holds.
// A no-op once an id is bound; the id is immutable for the conversation's
// lifetime.
func (c *Controller) Resume(id int64) {
	c.mu.Lock()
	if c.conversationID == 0 {
		c.conversationID = id
	}
	c.mu.Unlock()
}

// Reset starts a fresh conversation with no server id bound.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.conversationID = 0
	c.messages = nil
	c.state = StateIdle
	c.epoch++
	c.mu.Unlock()
}

// Delete removes a stored conversation after the confirm step agrees. When
// the user declines, no network call is made and deleted is false. The
// caller refreshes its history list after a successful delete.
func (c *Controller) Delete(ctx context.Context, id int64, confirm func() bool) (deleted bool, err error) {
	if confirm == nil || !confirm() {
		return false, nil
	}
	if err := c.client.DeleteConversation(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}
