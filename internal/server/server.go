// Copyright (c) 2025 The planterm authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the HTTP API for planterm chats.
//
// Endpoints:
//   - POST   /api/chats                - Create a new chat
//   - GET    /api/chats                - List chats
//   - GET    /api/chats/{id}           - Get a chat with its messages
//   - DELETE /api/chats/{id}           - Delete a chat
//   - POST   /api/chats/{id}/messages  - Send a message and relay to the LLM
//   - GET    /health                   - Health check
//   - GET    /stats                    - Usage statistics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/planterm/planterm/internal/config"
	"github.com/planterm/planterm/internal/llm"
	"github.com/planterm/planterm/internal/model"
	"github.com/planterm/planterm/internal/plan"
	"github.com/planterm/planterm/internal/store"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// MaxContentLength is the maximum message content length to prevent DoS.
	MaxContentLength = 100000

	// MaxRequestBodySize is the maximum request body size (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxTitleLength is the maximum chat title length.
	MaxTitleLength = 200

	// Version is the server version.
	Version = "0.1.0"
)

// ============================================================================
// STATS
// ============================================================================

// Stats tracks server usage counters. Safe for concurrent use.
type Stats struct {
	mu              sync.Mutex
	startTime       time.Time
	RequestsTotal   int64 `json:"requests_total"`
	MessagesRelayed int64 `json:"messages_relayed"`
	PlansExtracted  int64 `json:"plans_extracted"`
}

// NewStats creates a Stats with the start time set to now.
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// RecordRelay records one relayed message and whether it carried a plan.
func (s *Stats) RecordRelay(planExtracted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MessagesRelayed++
	if planExtracted {
		s.PlansExtracted++
	}
}

// RecordRequest records one API request.
func (s *Stats) RecordRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RequestsTotal++
}

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		startTime:       s.startTime,
		RequestsTotal:   s.RequestsTotal,
		MessagesRelayed: s.MessagesRelayed,
		PlansExtracted:  s.PlansExtracted,
	}
}

// Uptime returns time since the server started.
func (s *Stats) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.startTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the planterm HTTP API server.
type Server struct {
	cfg      config.ServerConfig
	provider llm.Provider
	store    store.Store

	// systemPrompt is prepended to every relayed conversation.
	systemPrompt string

	// defaultModel overrides the provider's default model when non-empty.
	defaultModel string

	// Auth token and rate limiter are read per request and may be
	// swapped by UpdateConfig while the server runs.
	mu        sync.RWMutex
	authToken string
	limiter   *rate.Limiter

	router *http.ServeMux
	server *http.Server
	stats  *Stats
}

// NewServer creates a server relaying chats through provider and
// persisting them in st.
func NewServer(cfg config.ServerConfig, provider llm.Provider, st store.Store) *Server {
	s := &Server{
		cfg:       cfg,
		provider:  provider,
		store:     st,
		authToken: cfg.AuthToken,
		limiter:   rate.NewLimiter(rateLimit(cfg.RateLimitRPS), rateBurst(cfg.RateLimitRPS)),
		router:    http.NewServeMux(),
		stats:     NewStats(),
	}
	s.setupRoutes()
	return s
}

// rateLimit converts a configured requests-per-second value to a rate
// limit. Zero or negative disables limiting.
func rateLimit(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

func rateBurst(rps float64) int {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return burst
}

// UpdateConfig applies a changed server config to the running server.
// Only the auth token and rate limit take effect live; host, port, and
// CORS changes still require a restart.
func (s *Server) UpdateConfig(cfg config.ServerConfig) {
	s.mu.Lock()
	s.authToken = cfg.AuthToken
	s.mu.Unlock()

	s.limiter.SetLimit(rateLimit(cfg.RateLimitRPS))
	s.limiter.SetBurst(rateBurst(cfg.RateLimitRPS))
	log.Printf("SERVER_CONFIG_RELOAD | auth=%t rps=%.1f", cfg.AuthToken != "", cfg.RateLimitRPS)
}

func (s *Server) currentAuthToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authToken
}

// WithSystemPrompt sets the system prompt prepended to relayed chats.
func (s *Server) WithSystemPrompt(prompt string) *Server {
	s.systemPrompt = prompt
	return s
}

// WithDefaultModel sets the model used for relayed requests.
func (s *Server) WithDefaultModel(m string) *Server {
	s.defaultModel = m
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /api/chats", s.handleCreateChat)
	s.router.HandleFunc("GET /api/chats", s.handleListChats)
	s.router.HandleFunc("GET /api/chats/{id}", s.handleGetChat)
	s.router.HandleFunc("DELETE /api/chats/{id}", s.handleDeleteChat)
	s.router.HandleFunc("POST /api/chats/{id}/messages", s.handleSendMessage)

	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /stats", s.handleStats)
}

// Handler returns the full HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	handler := Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(log.Default()),
		CORSMiddleware(s.cfg.CORSEnabled),
		RateLimitMiddleware(s.limiter),
		AuthMiddleware(s.currentAuthToken),
	)(s.router)
	return handler
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	host := s.cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	addr := fmt.Sprintf("%s:%d", host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("SERVER_START | addr=%s version=%s provider=%s", addr, Version, s.provider.Name())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Printf("SERVER_SHUTDOWN | starting graceful shutdown")
	return s.server.Shutdown(ctx)
}

// ============================================================================
// CHAT CRUD HANDLERS
// ============================================================================

// createChatRequest is the body for POST /api/chats.
type createChatRequest struct {
	Title        string `json:"title"`
	SystemPrompt string `json:"system_prompt"`
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	var req createChatRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Title) > MaxTitleLength {
		s.writeError(w, http.StatusBadRequest, "title too long")
		return
	}

	chat := model.NewChat()
	chat.Title = strings.TrimSpace(req.Title)
	chat.Model = s.defaultModel
	chat.SystemPrompt = req.SystemPrompt
	if chat.SystemPrompt == "" {
		chat.SystemPrompt = s.systemPrompt
	}

	if err := s.store.Create(chat); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}
	s.writeJSON(w, http.StatusCreated, chat)
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	metas, err := s.store.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"chats": metas})
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	chat, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to load chat")
		return
	}
	s.writeJSON(w, http.StatusOK, chat)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	if err := s.store.Delete(r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// MESSAGE RELAY
// ============================================================================

// sendMessageRequest is the body for POST /api/chats/{id}/messages.
type sendMessageRequest struct {
	Content string `json:"content"`
}

// sendMessageResponse pairs the stored user and assistant messages.
type sendMessageResponse struct {
	UserMessage      *model.Message `json:"user_message"`
	AssistantMessage *model.Message `json:"assistant_message"`
}

// handleSendMessage appends a user message, relays the conversation to the
// configured provider, and stores the assistant reply.
//
// When the user message asks for a project plan, a transient system
// instruction describing the plan format is included in the relayed
// history. It is never persisted.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	s.stats.RecordRequest()

	var req sendMessageRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	content := req.Content
	if strings.TrimSpace(content) == "" {
		s.writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(content) > MaxContentLength {
		s.writeError(w, http.StatusBadRequest, "content too long")
		return
	}

	chat, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "chat not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "failed to load chat")
		return
	}

	userMsg := model.NewUserMessage(content)
	chat.AddMessage(userMsg)

	// The format instruction rides along only for this request.
	var extra string
	if plan.IsPlanRequest(content) {
		extra = plan.Instruction()
	}

	opts := llm.Options{Model: s.defaultModel}
	if chat.Model != "" {
		opts.Model = chat.Model
	}

	start := time.Now()
	reply, err := s.provider.Chat(r.Context(), chat.History(extra), opts)
	if err != nil {
		s.writeProviderError(w, err)
		return
	}

	assistantMsg := model.NewAssistantMessage(reply)
	assistantMsg.Duration = time.Since(start)

	// Surface a structured plan to API clients when the reply carries a
	// well-formed tagged block. The content itself stays verbatim.
	parsed := plan.Extract(reply, nil)
	if parsed.Plan != nil {
		assistantMsg.ProjectPlan = parsed.Plan
	}
	s.stats.RecordRelay(parsed.Plan != nil)

	if err := s.store.AppendMessage(chat.ID, userMsg); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to store message")
		return
	}
	if err := s.store.AppendMessage(chat.ID, assistantMsg); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	s.writeJSON(w, http.StatusOK, sendMessageResponse{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	})
}

// ============================================================================
// HEALTH AND STATS
// ============================================================================

// healthResponse is the body for GET /health.
type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Provider string `json:"provider"`
	Backend  string `json:"backend_status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	backend := "ok"
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.provider.Ping(ctx); err != nil {
		backend = "unreachable"
	}

	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Version:  Version,
		Provider: s.provider.Name(),
		Backend:  backend,
	})
}

// statsResponse is the body for GET /stats.
type statsResponse struct {
	RequestsTotal   int64  `json:"requests_total"`
	MessagesRelayed int64  `json:"messages_relayed"`
	PlansExtracted  int64  `json:"plans_extracted"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	Provider        string `json:"provider"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.Snapshot()
	s.writeJSON(w, http.StatusOK, statsResponse{
		RequestsTotal:   snap.RequestsTotal,
		MessagesRelayed: snap.MessagesRelayed,
		PlansExtracted:  snap.PlansExtracted,
		UptimeSeconds:   int64(s.stats.Uptime().Seconds()),
		Provider:        s.provider.Name(),
	})
}

// ============================================================================
// HELPERS
// ============================================================================

// decodeBody decodes a JSON request body with a size cap and strict fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"code":    status,
		},
	})
}

// writeProviderError maps backend failures to HTTP statuses.
func (s *Server) writeProviderError(w http.ResponseWriter, err error) {
	var clientErr *llm.ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case llm.ErrTypeRateLimited:
			s.writeError(w, http.StatusTooManyRequests, clientErr.Message)
			return
		case llm.ErrTypeTimeout:
			s.writeError(w, http.StatusGatewayTimeout, clientErr.Message)
			return
		case llm.ErrTypeAuth:
			s.writeError(w, http.StatusBadGateway, "backend authentication failed")
			return
		case llm.ErrTypeModelNotFound:
			s.writeError(w, http.StatusBadGateway, clientErr.Message)
			return
		}
	}
	log.Printf("RELAY_ERROR | provider=%s error=%v", s.provider.Name(), err)
	s.writeError(w, http.StatusBadGateway, "backend request failed")
}
