package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/auth"
	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const msgTodoNotFound = "Todo not found"

// todoWriteOnce are fields set by the server at creation.
var todoWriteOnce = []string{"todoId", "createdAt", "username"}

type TodoHandler struct {
	todos store.TodoStore
	log   *slog.Logger
	now   func() time.Time
}

func NewTodoHandler(todos store.TodoStore, log *slog.Logger, now func() time.Time) *TodoHandler {
	if now == nil {
		now = time.Now
	}
	return &TodoHandler{todos: todos, log: log, now: now}
}

type createTodoRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.TodoHandler.List")

	todos, err := h.todos.ListTodos(r.Context(), auth.GetUsernameFromContext(r.Context()))
	if err != nil {
		log.Error("failed to list todos", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.TodoHandler.Get")

	todo, ok := h.owned(w, r, log)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.TodoHandler.Create")

	var req createTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	errs := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		errs["title"] = msgNotEmpty
	}
	if strings.TrimSpace(req.Body) == "" {
		errs["body"] = msgNotEmpty
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	todo := &models.Todo{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Body:      req.Body,
		Username:  auth.GetUsernameFromContext(r.Context()),
		CreatedAt: h.now().UTC(),
	}
	if err := h.todos.CreateTodo(r.Context(), todo); err != nil {
		log.Error("failed to create todo", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}

	log.Info("todo created", slog.String("todo_id", todo.ID))
	writeJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.TodoHandler.Update")

	body, err := readPatch(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if body.touches(todoWriteOnce...) {
		writeError(w, http.StatusForbidden, msgNotAllowed)
		return
	}

	todo, ok := h.owned(w, r, log)
	if !ok {
		return
	}

	var patch models.TodoPatch
	if err := body.decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if errs := blankFields(map[string]*string{"title": patch.Title, "body": patch.Body}); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	if err := h.todos.UpdateTodo(r.Context(), todo.ID, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgTodoNotFound)
			return
		}
		log.Error("failed to update todo", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}
	writeMessage(w, msgUpdated)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.TodoHandler.Delete")

	todo, ok := h.owned(w, r, log)
	if !ok {
		return
	}
	if err := h.todos.DeleteTodo(r.Context(), todo.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to delete todo", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}
	writeMessage(w, msgDeleted)
}

// owned loads the todo named in the path and checks it belongs to the
// caller. On failure the response has already been written.
func (h *TodoHandler) owned(w http.ResponseWriter, r *http.Request, log *slog.Logger) (*models.Todo, bool) {
	todo, err := h.todos.GetTodo(r.Context(), mux.Vars(r)["todoId"])
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, msgTodoNotFound)
		return nil, false
	case err != nil:
		log.Error("failed to load todo", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return nil, false
	case todo.Username != auth.GetUsernameFromContext(r.Context()):
		writeError(w, http.StatusForbidden, msgUnauthorized)
		return nil, false
	}
	return todo, true
}
