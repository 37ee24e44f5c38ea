// Package api exposes the chat assistant over HTTP. It is the stand-in for
// whatever embeds the widget: it decodes requests, builds a per-request
// orchestrator from the current settings snapshot, and maps chat error
// kinds onto status codes. No chat logic lives here.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"siteassist/internal/chat"
	"siteassist/internal/config"
	"siteassist/internal/leads"
	"siteassist/internal/llm"
)

// Server is the REST API server for the chat widget.
type Server struct {
	cfg       *config.Config
	store     chat.HistoryStore
	factory   *llm.Factory
	retriever chat.Retriever // nil when no search provider is configured
	sink      leads.Sink     // nil when lead collection is not configured
	sanitizer *chat.Sanitizer
	log       logr.Logger
}

// NewServer wires the API server from its collaborators.
func NewServer(cfg *config.Config, store chat.HistoryStore, factory *llm.Factory, log logr.Logger) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		factory:   factory,
		sanitizer: chat.NewSanitizer(),
		log:       log,
	}
}

// WithRetriever attaches the website search adapter.
func (s *Server) WithRetriever(r chat.Retriever) *Server {
	s.retriever = r
	return s
}

// WithLeadSink attaches the CRM webhook sink, enabling POST /api/v1/leads.
func (s *Server) WithLeadSink(sink leads.Sink) *Server {
	s.sink = sink
	return s
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(s.log))

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/chat", s.handleChat).Methods("POST")
	v1.HandleFunc("/chat/clear", s.handleClearHistory).Methods("POST")
	v1.HandleFunc("/models", s.handleListModels).Methods("GET")
	v1.HandleFunc("/widget", s.handleWidgetConfig).Methods("GET")
	v1.HandleFunc("/leads", s.handleLead).Methods("POST")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Start runs the server until it fails.
func (s *Server) Start() error {
	addr := s.cfg.ListenAddr
	s.log.Info("listening", "address", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// --- Handlers ---

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, chat.NewError(chat.KindValidation, "Invalid request body."))
		return
	}

	orch := chat.NewOrchestrator(s.cfg.Snapshot(), s.store, s.factory,
		s.retriever, s.sanitizer, s.log.WithName("chat"))

	reply, err := orch.Handle(r.Context(), chat.Request{
		SessionID: req.SessionID,
		Message:   req.Message,
	})
	if err != nil {
		s.log.Error(err, "chat turn failed", "session", req.SessionID)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		respondError(w, chat.NewError(chat.KindValidation, "Session id is required."))
		return
	}
	if err := s.store.Clear(r.Context(), req.SessionID); err != nil {
		s.log.Error(err, "clear history failed", "session", req.SessionID)
		respondJSON(w, http.StatusInternalServerError, errorBody(chat.KindUpstreamTransport,
			"Failed to clear history."))
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	providerID := r.URL.Query().Get("provider")
	if providerID == "" {
		providerID = s.cfg.Provider
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	apiKey := s.cfg.Providers[providerID].APIKey
	models := s.factory.ListAvailableModels(r.Context(), providerID, apiKey, refresh)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"provider": providerID,
		"models":   models,
	})
}

// handleWidgetConfig serves the widget bootstrap settings. This is where
// the "immediate" lead timing is resolved: the form shows before the first
// message, so the flag ships with the widget config instead of a turn reply.
func (s *Server) handleWidgetConfig(w http.ResponseWriter, r *http.Request) {
	timing := chat.LeadTiming(s.cfg.Leads.Timing)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"leadCollection": map[string]interface{}{
			"enabled":        s.cfg.Leads.Enabled,
			"timing":         timing,
			"showFormOnOpen": chat.ShowLeadFormOnOpen(s.cfg.Leads.Enabled, timing),
		},
	})
}

type leadRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	if s.sink == nil {
		respondJSON(w, http.StatusUnprocessableEntity,
			errorBody(chat.KindConfiguration, "Lead collection is not configured."))
		return
	}

	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest,
			errorBody(chat.KindValidation, "Invalid request body."))
		return
	}

	lead, err := leads.Validate(req.Name, req.Email)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody(chat.KindValidation, err.Error()))
		return
	}

	if err := s.sink.Save(r.Context(), lead); err != nil {
		s.log.Error(err, "lead forwarding failed")
		respondJSON(w, http.StatusBadGateway, errorBody(chat.KindUpstreamTransport,
			"Failed to save your contact details. Please try again."))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Thank you! Let's continue our conversation.",
	})
}

// --- Helpers ---

func errorBody(kind chat.ErrorKind, message string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]string{
			"kind":    string(kind),
			"message": message,
		},
	}
}

// respondError maps a chat error kind onto an HTTP status: bad requests are
// the visitor's fault, configuration problems are the operator's, upstream
// failures are gateway errors.
func respondError(w http.ResponseWriter, err error) {
	kind := chat.KindOf(err)
	status := http.StatusBadGateway
	switch kind {
	case chat.KindValidation:
		status = http.StatusBadRequest
	case chat.KindConfiguration, chat.KindUnsupportedProvider:
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, errorBody(kind, chat.PublicMessage(err)))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func loggingMiddleware(log logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := uuid.NewString()
			w.Header().Set("X-Request-Id", reqID)
			next.ServeHTTP(w, r)
			log.Info("request",
				"id", reqID,
				"method", r.Method,
				"uri", r.RequestURI,
				"duration", fmt.Sprintf("%v", time.Since(start)),
			)
		})
	}
}
