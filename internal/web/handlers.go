// Package web is the browser-facing presentation adapter: a gin server that
// hosts the single-page client and exposes the shared core over /api. Each
// browser identifies itself with an X-Device-ID header, which scopes its
// rows in the persistent session store.
package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/chat"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/config"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/nav"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/session"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/store"
)

const deviceHeader = "X-Device-ID"

// Handler wires HTTP routes to the client core.
type Handler struct {
	cfg *config.Config
	st  store.Store
	log *zap.Logger
}

// NewHandler constructs a Handler instance over the shared store.
func NewHandler(cfg *config.Config, st store.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{cfg: cfg, st: st, log: log}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/auth/login", h.login)
	api.POST("/auth/wx-login", h.loginWx)
	api.POST("/logout", h.logout)
	api.GET("/session", h.sessionState)
	api.POST("/role", h.selectRole)
	api.DELETE("/role", h.changeRole)
	api.POST("/chat/send", h.sendChat)
	api.GET("/conversation/list", h.listConversations)
	api.GET("/conversation/:id", h.getConversation)
	api.DELETE("/conversation/:id", h.deleteConversation)
	api.GET("/info", h.info)
	router.GET("/healthz", h.health)

	if h.cfg.Web.StaticDir != "" {
		router.Static("/static", h.cfg.Web.StaticDir)
		router.StaticFile("/", h.cfg.Web.StaticDir+"/index.html")
	}
}

// core rebuilds the device-scoped session, navigation, and conversation
// state for one request. The browser page carries the conversation id, so
// the core itself stays stateless between requests.
func (h *Handler) core(c *gin.Context) (*session.Manager, *nav.Machine, *chat.Controller) {
	device := c.GetHeader(deviceHeader)
	if device == "" {
		device = "default"
	}
	scoped := store.Scoped(h.st, "device:"+device)

	mgr := session.NewManager(scoped, h.log)
	client := backend.NewClient(h.cfg.Backend.BaseURL, h.cfg.Backend.Timeout(), mgr, h.log)
	mgr.Bind(client)
	if err := mgr.Restore(c.Request.Context()); err != nil {
		h.log.Warn("restore session", zap.Error(err))
	}

	machine := nav.NewMachine(mgr, h.log)
	machine.Restore()
	return mgr, machine, chat.NewController(client, mgr, h.log)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	mgr, _, _ := h.core(c)
	user, err := mgr.Login(c.Request.Context(), backend.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type wxLoginRequest struct {
	Code      string `json:"code"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
}

func (h *Handler) loginWx(c *gin.Context) {
	var req wxLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "login code is required"})
		return
	}
	mgr, _, _ := h.core(c)
	user, err := mgr.LoginWx(c.Request.Context(), backend.WxLoginRequest{
		Code:      req.Code,
		Nickname:  req.Nickname,
		AvatarURL: req.AvatarURL,
		Role:      models.Role(req.Role),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) logout(c *gin.Context) {
	mgr, _, _ := h.core(c)
	mgr.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) sessionState(c *gin.Context) {
	mgr, machine, _ := h.core(c)
	screen, role := machine.Active()
	resp := gin.H{
		"authenticated": mgr.IsAuthenticated(),
		"screen":        screen,
	}
	if role != "" {
		resp["role"] = role
		resp["role_name"] = role.DisplayName()
	}
	if user, ok := mgr.User(); ok {
		resp["user"] = user
	}
	c.JSON(http.StatusOK, resp)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) selectRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.Role(req.Role).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid role is required"})
		return
	}
	_, machine, _ := h.core(c)
	if err := machine.SelectRole(c.Request.Context(), models.Role(req.Role)); err != nil {
		h.writeError(c, err)
		return
	}
	screen, role := machine.Active()
	c.JSON(http.StatusOK, gin.H{"screen": screen, "role": role})
}

func (h *Handler) changeRole(c *gin.Context) {
	_, machine, _ := h.core(c)
	if err := machine.ChangeRole(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	screen, _ := machine.Active()
	c.JSON(http.StatusOK, gin.H{"screen": screen})
}

type chatSendRequest struct {
	Message        string `json:"message"`
	ConversationID int64  `json:"conversation_id"`
}

func (h *Handler) sendChat(c *gin.Context) {
	var req chatSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	_, _, controller := h.core(c)
	if req.ConversationID != 0 {
		controller.Resume(req.ConversationID)
	}

	var riskWarning string
	controller.OnRisk(func(warning string) { riskWarning = warning })

	if err := controller.SendUserMessage(c.Request.Context(), req.Message); err != nil {
		h.writeError(c, err)
		return
	}

	messages := controller.Messages()
	last := messages[len(messages)-1]
	c.JSON(http.StatusOK, gin.H{
		"message":         last.Content,
		"source":          last.Source,
		"conversation_id": controller.ConversationID(),
		"has_risk":        riskWarning != "",
		"risk_warning":    riskWarning,
	})
}

func (h *Handler) listConversations(c *gin.Context) {
	mgr, _, controller := h.core(c)
	if !mgr.IsAuthenticated() {
		c.JSON(http.StatusOK, gin.H{"conversations": []models.ConversationSummary{}})
		return
	}
	summaries := controller.History(c.Request.Context())
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

func (h *Handler) getConversation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}
	_, _, controller := h.core(c)
	if err := controller.Open(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversation": gin.H{"id": controller.ConversationID()},
		"messages":     controller.Messages(),
	})
}

func (h *Handler) deleteConversation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}
	_, _, controller := h.core(c)
	// The confirm dialog already happened in the browser; reaching this
	// endpoint is the confirmation.
	if _, err := controller.Delete(c.Request.Context(), id, func() bool { return true }); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "web-server"})
}

func (h *Handler) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "AI Health Assistant Web",
		"description": "browser adapter for the advisory assistant",
	})
}

// writeError maps core errors onto HTTP statuses for the page.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, backend.ErrAuthExpired), errors.Is(err, chat.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please log in first"})
	case errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message must not be empty"})
	default:
		var srvErr *backend.ServerError
		if errors.As(err, &srvErr) {
			c.JSON(srvErr.Status, gin.H{"error": backend.Reason(err)})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": backend.Reason(err)})
	}
}
