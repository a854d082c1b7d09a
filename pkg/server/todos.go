package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/neezs/neezspilot/pkg/api"
	"github.com/neezs/neezspilot/pkg/todo"
)

const (
	defaultAPIListLimit = 50
	maxAPIListLimit     = 200
)

// respondStoreError maps the typed store errors onto HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error) {
	var cerr *todo.ConfigError
	var verr *todo.ValidationError
	var nferr *todo.NotFoundError
	switch {
	case errors.As(err, &cerr):
		api.FailureResponse(w, http.StatusServiceUnavailable, "todo backend is not configured: "+cerr.Setting)
	case errors.As(err, &verr):
		api.FailureResponse(w, http.StatusBadRequest, verr.Reason)
	case errors.As(err, &nferr):
		api.FailureResponse(w, http.StatusNotFound, "item not found")
	default:
		log.WithError(err).Error("todo store operation failed")
		api.FailureResponse(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) listTodos(w http.ResponseWriter, req *http.Request) {
	source, ok := sourceFromQuery(w, req)
	if !ok {
		return
	}

	limit := defaultAPIListLimit
	if raw := req.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAPIListLimit {
			api.FailureResponse(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}
	// The LIFF front-end sends includeDone=1|0; accept true/false as well.
	raw := req.URL.Query().Get("includeDone")
	includeDone := raw == "1" || raw == "true"

	items, err := s.store.List(req.Context(), source, todo.ListOptions{Limit: limit, IncludeDone: includeDone})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []todo.Item{}
	}
	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{"items": items})
}

type createTodoRequest struct {
	ChatKey string `json:"chatKey"`
	Text    string `json:"text"`
	UserID  string `json:"userId,omitempty"`
}

func (s *Server) createTodo(w http.ResponseWriter, req *http.Request) {
	var body createTodoRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		api.FailureResponse(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		api.FailureResponse(w, http.StatusBadRequest, "text is required")
		return
	}
	source, err := todo.ParseChatKey(body.ChatKey)
	if err != nil {
		api.FailureResponse(w, http.StatusBadRequest, "chatKey is required: "+err.Error())
		return
	}

	item, err := s.store.Add(req.Context(), source, todo.NewItem{Text: body.Text, UserID: body.UserID})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{"item": item})
}

type markDoneRequest struct {
	Done *bool `json:"done,omitempty"`
}

func (s *Server) markTodoDone(w http.ResponseWriter, req *http.Request) {
	mutator, ok := s.store.(todo.Mutator)
	if !ok {
		api.FailureResponse(w, http.StatusBadRequest, "backend does not support updating items by id")
		return
	}

	var body markDoneRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		api.FailureResponse(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	done := true
	if body.Done != nil {
		done = *body.Done
	}

	result, err := mutator.MarkDone(req.Context(), mux.Vars(req)["id"], done)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	api.RespondWithJSON(http.StatusOK, w, result)
}

func (s *Server) deleteTodo(w http.ResponseWriter, req *http.Request) {
	mutator, ok := s.store.(todo.Mutator)
	if !ok {
		api.FailureResponse(w, http.StatusBadRequest, "backend does not support deleting items by id")
		return
	}

	result, err := mutator.Delete(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		respondStoreError(w, err)
		return
	}
	api.RespondWithJSON(http.StatusOK, w, result)
}

func sourceFromQuery(w http.ResponseWriter, req *http.Request) (todo.Source, bool) {
	key := req.URL.Query().Get("chatKey")
	if key == "" {
		api.FailureResponse(w, http.StatusBadRequest, "chatKey query parameter is required")
		return todo.Source{}, false
	}
	source, err := todo.ParseChatKey(key)
	if err != nil {
		api.FailureResponse(w, http.StatusBadRequest, err.Error())
		return todo.Source{}, false
	}
	return source, true
}
