// ABOUTME: HTTP API exposing post mutations, queries, and the SSE event stream
// ABOUTME: Bridges successful mutations into broker envelopes for live subscribers

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/tsione/sangria-graphql-subscriptions/internal/post"
	"github.com/tsione/sangria-graphql-subscriptions/internal/pubsub"
	"github.com/tsione/sangria-graphql-subscriptions/internal/store"
)

// Topic vocabulary published by the mutation bridge. The broker treats these
// as opaque strings; subscribers pick the subset they care about.
const (
	TopicPostCreated = "post.created"
	TopicPostUpdated = "post.updated"
	TopicPostDeleted = "post.deleted"
)

// PostRequest is the JSON request body for POST and PUT /api/posts.
type PostRequest struct {
	ID      int64  `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostsResponse is the JSON response for GET /api/posts.
type PostsResponse struct {
	Posts []store.Post `json:"posts"`
}

// Server wires the action engine and the broker behind an HTTP surface.
// Queries never touch the broker; only successful mutations feed it.
type Server struct {
	posts  *post.Service
	broker *pubsub.Broker
	logger *slog.Logger
}

// NewServer creates an API server. Pass nil logger for default.
func NewServer(posts *post.Service, broker *pubsub.Broker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		posts:  posts,
		broker: broker,
		logger: logger.With("component", "api"),
	}
}

// Handler returns the routed HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", s.handleListPosts)
	mux.HandleFunc("POST /api/posts", s.handleCreatePost)
	mux.HandleFunc("GET /api/posts/{id}", s.handleGetPost)
	mux.HandleFunc("PUT /api/posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("DELETE /api/posts/{id}", s.handleDeletePost)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	return mux
}

// handleCreatePost handles POST /api/posts requests.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	req, err := parsePostRequest(r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.posts.Create(r.Context(), store.Post{
		ID:      req.ID,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		s.sendEngineError(w, err)
		return
	}

	s.broker.Publish(TopicPostCreated, pubsub.Envelope{Topic: TopicPostCreated, Post: created})
	s.sendJSON(w, http.StatusCreated, created)
}

// handleListPosts handles GET /api/posts requests.
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.FindAll(r.Context())
	if err != nil {
		s.sendEngineError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, PostsResponse{Posts: posts})
}

// handleGetPost handles GET /api/posts/{id} requests.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	found, err := s.posts.Find(r.Context(), id)
	if err != nil {
		s.sendEngineError(w, err)
		return
	}
	if found == nil {
		s.sendJSONError(w, http.StatusNotFound, fmt.Sprintf("post %d not found", id))
		return
	}

	s.sendJSON(w, http.StatusOK, found)
}

// handleUpdatePost handles PUT /api/posts/{id} requests.
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := parsePostRequest(r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.posts.Update(r.Context(), store.Post{
		ID:      id,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		s.sendEngineError(w, err)
		return
	}

	s.broker.Publish(TopicPostUpdated, pubsub.Envelope{Topic: TopicPostUpdated, Post: updated})
	s.sendJSON(w, http.StatusOK, updated)
}

// handleDeletePost handles DELETE /api/posts/{id} requests.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := s.posts.Delete(r.Context(), id)
	if err != nil {
		s.sendEngineError(w, err)
		return
	}

	s.broker.Publish(TopicPostDeleted, pubsub.Envelope{Topic: TopicPostDeleted, Post: deleted})
	s.sendJSON(w, http.StatusOK, deleted)
}

// handleEvents handles GET /api/events requests. It subscribes to the topics
// named in the comma-separated "topics" query parameter (default: all three
// mutation topics) and streams matching envelopes as SSE events until the
// client disconnects or the broker shuts down.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("streaming not supported")
		s.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	topics := parseTopics(r.URL.Query().Get("topics"))

	ch, subID := s.broker.Subscribe(r.Context(), topics...)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	s.writeSSEEvent(w, "subscribed", map[string]any{"subscription_id": subID, "topics": topics})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return

		case env, ok := <-ch:
			if !ok {
				// Subscription closed: end of sequence, not an error.
				return
			}
			s.writeSSEEvent(w, "post", env)
			flusher.Flush()
		}
	}
}

// parseTopics splits a comma-separated topic list, defaulting to every
// mutation topic when empty.
func parseTopics(raw string) []string {
	if raw == "" {
		return []string{TopicPostCreated, TopicPostUpdated, TopicPostDeleted}
	}

	var topics []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}

// parsePostRequest parses and validates a PostRequest from the request body.
func parsePostRequest(r *http.Request) (*PostRequest, error) {
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	if req.Title == "" {
		return nil, errors.New("title is required")
	}

	return &req, nil
}

// parseID parses the {id} path segment.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}

// sendEngineError maps action-engine failures onto HTTP responses.
func (s *Server) sendEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, post.ErrNotFound):
		s.sendJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, post.ErrAlreadyExists):
		s.sendJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, post.ErrAmbiguousResult):
		s.logger.Error("data integrity violation", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	default:
		s.logger.Error("post operation failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// sendJSON writes a JSON response with the given status.
func (s *Server) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeSSEEvent writes one Server-Sent Event.
func (s *Server) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
}
