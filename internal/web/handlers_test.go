package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/config"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/store"
)

// fakeBackend simulates the remote advisory service.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		switch {
		case r.URL.Path == "/api/auth/login":
			var req struct {
				Username string `json:"username"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			w.Write([]byte(`{"token":"t-` + req.Username + `","user":{"id":1,"role":"student","nickname":"` + req.Username + `"}}`))
		case r.URL.Path == "/api/chat/send":
			if auth == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"message":"stay hydrated","source":"internal","conversation_id":42,"has_risk":true,"risk_warning":"see a doctor for persistent symptoms"}`))
		case r.URL.Path == "/api/conversation/list":
			w.Write([]byte(`{"conversations":[{"id":42,"title":"hydration"}]}`))
		case r.URL.Path == "/api/conversation/42" && r.Method == http.MethodGet:
			w.Write([]byte(`{"conversation":{"id":42,"title":"hydration"},"messages":[{"id":1,"role":"user","content":"hi"},{"id":2,"role":"assistant","content":"hello","source":"internal"}]}`))
		case r.URL.Path == "/api/conversation/42" && r.Method == http.MethodDelete:
			w.Write([]byte(`{"message":"deleted"}`))
		default:
			t.Errorf("unexpected backend request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Backend.BaseURL = fakeBackend(t).URL
	cfg.Web.StaticDir = ""
	cfg.Databases = map[string]config.DatabaseConfig{
		"sqlite3": {DSN: ":memory:"},
	}
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	router := gin.New()
	NewHandler(cfg, st, nil).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, device, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if device != "" {
		req.Header.Set("X-Device-ID", device)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	w, body := doJSON(t, router, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK || body["status"] != "healthy" {
		t.Fatalf("unexpected health response: %d %v", w.Code, body)
	}
}

func TestLoginThenSessionState(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "dev-a", `{"username":"amy","password":"pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %v", w.Code, body)
	}
	user, ok := body["user"].(map[string]any)
	if !ok || user["nickname"] != "amy" {
		t.Fatalf("unexpected login body: %v", body)
	}

	w, body = doJSON(t, router, http.MethodGet, "/api/session", "dev-a", "")
	if w.Code != http.StatusOK || body["authenticated"] != true {
		t.Fatalf("expected authenticated session: %d %v", w.Code, body)
	}
	// Login adopts the server role as the default selection.
	if body["role"] != "student" {
		t.Fatalf("expected default role: %v", body)
	}
}

func TestLoginRejectsMissingCredentials(t *testing.T) {
	router := newTestRouter(t)
	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/login", "", `{"username":"amy"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDeviceHeaderScopesSessions(t *testing.T) {
	router := newTestRouter(t)

	if w, _ := doJSON(t, router, http.MethodPost, "/api/auth/login", "dev-a", `{"username":"amy","password":"pw"}`); w.Code != http.StatusOK {
		t.Fatalf("login failed: %d", w.Code)
	}

	_, bodyA := doJSON(t, router, http.MethodGet, "/api/session", "dev-a", "")
	_, bodyB := doJSON(t, router, http.MethodGet, "/api/session", "dev-b", "")
	if bodyA["authenticated"] != true {
		t.Fatalf("device a lost its session: %v", bodyA)
	}
	if bodyB["authenticated"] != false {
		t.Fatalf("device b must not see device a's session: %v", bodyB)
	}
}

func TestChatSendRequiresSession(t *testing.T) {
	router := newTestRouter(t)
	w, _ := doJSON(t, router, http.MethodPost, "/api/chat/send", "dev-a", `{"message":"hello"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestChatSendRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/auth/login", "dev-a", `{"username":"amy","password":"pw"}`)

	w, body := doJSON(t, router, http.MethodPost, "/api/chat/send", "dev-a", `{"message":"how much water?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("send failed: %d %v", w.Code, body)
	}
	if body["message"] != "stay hydrated" || body["source"] != "internal" {
		t.Fatalf("unexpected reply: %v", body)
	}
	if body["conversation_id"] != float64(42) {
		t.Fatalf("conversation id not bound: %v", body["conversation_id"])
	}
	if body["has_risk"] != true || body["risk_warning"] != "see a doctor for persistent symptoms" {
		t.Fatalf("risk flag lost: %v", body)
	}
}

func TestChatSendRejectsEmptyMessage(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/auth/login", "dev-a", `{"username":"amy","password":"pw"}`)

	w, _ := doJSON(t, router, http.MethodPost, "/api/chat/send", "dev-a", `{"message":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRoleSelectAndChange(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/api/role", "dev-a", `{"role":"parent"}`)
	if w.Code != http.StatusOK || body["role"] != "parent" || body["screen"] != "home" {
		t.Fatalf("unexpected role response: %d %v", w.Code, body)
	}

	w, body = doJSON(t, router, http.MethodDelete, "/api/role", "dev-a", "")
	if w.Code != http.StatusOK || body["screen"] != "role-select" {
		t.Fatalf("unexpected change response: %d %v", w.Code, body)
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/role", "dev-a", `{"role":"astronaut"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", w.Code)
	}
}

func TestConversationEndpoints(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/auth/login", "dev-a", `{"username":"amy","password":"pw"}`)

	w, body := doJSON(t, router, http.MethodGet, "/api/conversation/list", "dev-a", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list failed: %d %v", w.Code, body)
	}
	conversations, ok := body["conversations"].([]any)
	if !ok || len(conversations) != 1 {
		t.Fatalf("unexpected list: %v", body)
	}

	w, body = doJSON(t, router, http.MethodGet, "/api/conversation/42", "dev-a", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get failed: %d %v", w.Code, body)
	}
	messages, ok := body["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("unexpected messages: %v", body)
	}

	if w, _ := doJSON(t, router, http.MethodGet, "/api/conversation/abc", "dev-a", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}

	if w, _ := doJSON(t, router, http.MethodDelete, "/api/conversation/42", "dev-a", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d", w.Code)
	}
}

func TestListConversationsEmptyWithoutSession(t *testing.T) {
	router := newTestRouter(t)
	w, body := doJSON(t, router, http.MethodGet, "/api/conversation/list", "dev-x", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list failed: %d", w.Code)
	}
	conversations, ok := body["conversations"].([]any)
	if !ok || len(conversations) != 0 {
		t.Fatalf("expected empty list, got %v", body)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/api/auth/login", "dev-a", `{"username":"amy","password":"pw"}`)

	if w, _ := doJSON(t, router, http.MethodPost, "/api/logout", "dev-a", ""); w.Code != http.StatusNoContent {
		t.Fatalf("logout failed: %d", w.Code)
	}
	_, body := doJSON(t, router, http.MethodGet, "/api/session", "dev-a", "")
	if body["authenticated"] != false {
		t.Fatalf("session survived logout: %v", body)
	}
}

func TestBadGatewayOnBackendFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	// A closed server: every request fails at the transport.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()
	cfg.Backend.BaseURL = dead.URL
	cfg.Web.StaticDir = ""
	cfg.Databases = map[string]config.DatabaseConfig{"sqlite3": {DSN: ":memory:"}}
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	router := gin.New()
	NewHandler(cfg, st, nil).RegisterRoutes(router)

	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/login", "dev-a", `{"username":"amy","password":"pw"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}
