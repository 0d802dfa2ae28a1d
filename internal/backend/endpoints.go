package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"
)

// LoginRequest carries username/password credentials (browser flow).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// WxLoginRequest exchanges a WeChat login code for a session (mini-app flow).
type WxLoginRequest struct {
	Code      string      `json:"code"`
	Nickname  string      `json:"nickname,omitempty"`
	AvatarURL string      `json:"avatar_url,omitempty"`
	Role      models.Role `json:"role,omitempty"`
}

// LoginResult is the response of both login endpoints. The browser endpoint
// names the token "access_token"; the mini-app endpoint names it "token".
type LoginResult struct {
	Token       string             `json:"token"`
	AccessToken string             `json:"access_token"`
	User        models.UserProfile `json:"user"`
}

// BearerToken returns whichever token field the endpoint populated.
func (r LoginResult) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// Login authenticates with username/password credentials.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	var result LoginResult
	if err := c.postJSON(ctx, "/api/auth/login", req, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// LoginWx authenticates with a WeChat login code.
func (c *Client) LoginWx(ctx context.Context, req WxLoginRequest) (LoginResult, error) {
	var result LoginResult
	if err := c.postJSON(ctx, "/api/auth/wx-login", req, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

// CurrentUser fetches the profile belonging to the current token.
func (c *Client) CurrentUser(ctx context.Context) (models.UserProfile, error) {
	var user models.UserProfile
	if err := c.getJSON(ctx, "/api/auth/me", &user); err != nil {
		return models.UserProfile{}, err
	}
	return user, nil
}

// ChatRequest is one user turn. ConversationID is zero until the backend
// assigns one on the first exchange.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID int64  `json:"conversation_id,omitempty"`
}

// ChatReply is the assistant's answer. The backend names the content field
// "message"; older web deployments used "reply", so both are accepted.
type ChatReply struct {
	Message        string        `json:"message"`
	Reply          string        `json:"reply"`
	Source         models.Source `json:"source"`
	ConversationID int64         `json:"conversation_id"`
	HasRisk        bool          `json:"has_risk"`
	RiskWarning    string        `json:"risk_warning"`
}

// Content returns the reply text regardless of which field carried it.
func (r ChatReply) Content() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Reply
}

// SendChat submits one message and returns the assistant reply.
func (c *Client) SendChat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	var reply ChatReply
	if err := c.postJSON(ctx, "/api/chat/send", req, &reply); err != nil {
		return ChatReply{}, err
	}
	return reply, nil
}

// ListConversations fetches the history list, newest first.
func (c *Client) ListConversations(ctx context.Context) ([]models.ConversationSummary, error) {
	var envelope struct {
		Conversations []models.ConversationSummary `json:"conversations"`
	}
	if err := c.getJSON(ctx, "/api/conversation/list", &envelope); err != nil {
		return nil, err
	}
	return envelope.Conversations, nil
}

// ConversationDetail is a full conversation with its ordered messages.
type ConversationDetail struct {
	ID       int64
	Title    string
	Messages []models.Message
}

type wireMessage struct {
	ID      int64              `json:"id"`
	Role    models.MessageRole `json:"role"`
	Content string             `json:"content"`
	Source  models.Source      `json:"source"`
}

// GetConversation fetches a conversation's message sequence. Messages come
// back in the server's (chronological) order and are not re-sorted.
func (c *Client) GetConversation(ctx context.Context, id int64) (ConversationDetail, error) {
	var envelope struct {
		Conversation struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"conversation"`
		Messages []wireMessage `json:"messages"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/conversation/%d", id), &envelope); err != nil {
		return ConversationDetail{}, err
	}

	detail := ConversationDetail{
		ID:       envelope.Conversation.ID,
		Title:    envelope.Conversation.Title,
		Messages: make([]models.Message, 0, len(envelope.Messages)),
	}
	if detail.ID == 0 {
		detail.ID = id
	}
	for _, m := range envelope.Messages {
		detail.Messages = append(detail.Messages, models.Message{
			ID:      strconv.FormatInt(m.ID, 10),
			Role:    m.Role,
			Content: m.Content,
			Source:  m.Source,
		})
	}
	return detail, nil
}

// DeleteConversation removes a conversation server-side.
func (c *Client) DeleteConversation(ctx context.Context, id int64) error {
	_, err := c.execute(ctx, http.MethodDelete, fmt.Sprintf("/api/conversation/%d", id), nil)
	return err
}
