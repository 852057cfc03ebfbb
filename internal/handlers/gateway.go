// Package handlers exposes the chat gateway: the HTTP surface a chat
// bridge calls with user updates, answered synchronously with the text
// and menus to render back to the user.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/carwise/internal/advice"
	"github.com/ukydev/carwise/internal/auth"
	"github.com/ukydev/carwise/internal/config"
	"github.com/ukydev/carwise/internal/convo"
	"github.com/ukydev/carwise/internal/db"
	"github.com/ukydev/carwise/internal/export"
	"github.com/ukydev/carwise/internal/middleware"
	"github.com/ukydev/carwise/internal/stats"
)

// Gateway wires the conversation engine and the read-only views behind
// the webhook endpoint.
type Gateway struct {
	engine   *convo.Engine
	stores   *db.Stores
	cfg      *config.Config
	auth     *auth.Service
	stats    *stats.Collector
	exporter *export.Exporter
	advisor  *advice.Client
	log      *logrus.Entry

	// chatLocks serializes updates of one chat so a double-tap cannot
	// race the session through a state twice.
	chatLocks sync.Map // chat id -> *sync.Mutex
}

// New builds the gateway.
func New(engine *convo.Engine, stores *db.Stores, cfg *config.Config, authService *auth.Service,
	collector *stats.Collector, exporter *export.Exporter, advisor *advice.Client, log *logrus.Entry) *Gateway {
	return &Gateway{
		engine:   engine,
		stores:   stores,
		cfg:      cfg,
		auth:     authService,
		stats:    collector,
		exporter: exporter,
		advisor:  advisor,
		log:      log,
	}
}

// Router assembles the chi router with auth and rate limiting applied.
func (g *Gateway) Router() http.Handler {
	authMW := middleware.NewAuthMiddleware(g.auth)
	rateMW := middleware.NewRateLimitMiddleware()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(authMW.Authenticate)
	r.Use(rateMW.RateLimit(30, 60))

	r.Get("/health", g.handleHealth)
	r.Post("/api/auth/token", g.handleToken)
	r.Post("/api/update", g.handleUpdate)
	return r
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type tokenRequest struct {
	ChatID   int64  `json:"chat_id"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// handleToken issues a chat-bound JWT to the bridge. The shared issuing
// secret is checked against its bcrypt hash from configuration.
func (g *Gateway) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ChatID == 0 {
		http.Error(w, "chat_id is required", http.StatusBadRequest)
		return
	}
	if !g.auth.CheckSecret(req.Secret) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := g.auth.GenerateToken(req.ChatID, req.Username)
	if err != nil {
		g.log.WithError(err).Error("token generation failed")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// updateRequest is one inbound chat event: free text or a tapped menu
// button. Sender fields describe the human behind the chat.
type updateRequest struct {
	Text         string `json:"text,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`

	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// updateResponse carries the synchronous reply: message text, an
// optional choice menu, and an optional file attachment.
type updateResponse struct {
	Text    string         `json:"text"`
	Choices []convo.Choice `json:"choices,omitempty"`
	File    *fileAttach    `json:"file,omitempty"`
}

type fileAttach struct {
	Name    string `json:"name"`
	Content []byte `json:"content"` // JSON-encoded as base64
}

func (g *Gateway) handleUpdate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Text == "" && req.CallbackData == "" {
		http.Error(w, "text or callback_data is required", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		req.Username = claims.Username
	}

	unlock := g.lockChat(claims.ChatID)
	defer unlock()

	resp, err := g.dispatch(r, claims.ChatID, req)
	if err != nil {
		g.log.WithError(err).WithField("chat_id", claims.ChatID).Error("update handling failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// dispatch routes one update: commands first, then an in-progress
// session, then the fallback hint.
func (g *Gateway) dispatch(r *http.Request, chatID int64, req updateRequest) (*updateResponse, error) {
	ctx := r.Context()

	if req.CallbackData != "" {
		token, ok := convo.ParseToken(req.CallbackData)
		if !ok {
			return &updateResponse{Text: "That button has expired. Send a command to continue."}, nil
		}
		return g.submitToSession(ctx, chatID, convo.TokenInput(token))
	}

	if cmd, args, ok := parseCommand(req.Text); ok {
		return g.handleCommand(ctx, chatID, req, cmd, args)
	}

	return g.submitToSession(ctx, chatID, convo.TextInput(req.Text))
}

// submitToSession feeds the input into the chat's session, or explains
// that nothing is in progress.
func (g *Gateway) submitToSession(ctx context.Context, chatID int64, in convo.Input) (*updateResponse, error) {
	s, err := g.engine.Resume(ctx, chatID)
	if errors.Is(err, convo.ErrNoSession) {
		return &updateResponse{Text: "Nothing in progress. Send /help for the list of commands."}, nil
	}
	if err != nil {
		return nil, err
	}

	res, err := g.engine.Submit(ctx, s, in)
	if err != nil {
		return nil, err
	}
	return fromResult(res), nil
}

func fromResult(res convo.Result) *updateResponse {
	return &updateResponse{Text: res.Message, Choices: res.Choices}
}

func (g *Gateway) lockChat(chatID int64) func() {
	v, _ := g.chatLocks.LoadOrStore(chatID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
