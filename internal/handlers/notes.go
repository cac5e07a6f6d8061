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

const msgNoteNotFound = "Note not found"

var noteWriteOnce = []string{"noteId", "createdAt", "username"}

type NoteHandler struct {
	notes store.NoteStore
	log   *slog.Logger
	now   func() time.Time
}

func NewNoteHandler(notes store.NoteStore, log *slog.Logger, now func() time.Time) *NoteHandler {
	if now == nil {
		now = time.Now
	}
	return &NoteHandler{notes: notes, log: log, now: now}
}

type createNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.NoteHandler.List")

	notes, err := h.notes.ListNotes(r.Context(), auth.GetUsernameFromContext(r.Context()))
	if err != nil {
		log.Error("failed to list notes", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.NoteHandler.Get")

	note, ok := h.owned(w, r, log)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.NoteHandler.Create")

	var req createNoteRequest
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

	note := &models.Note{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Body:      req.Body,
		Username:  auth.GetUsernameFromContext(r.Context()),
		CreatedAt: h.now().UTC(),
		Folders:   []string{models.FolderDefault},
	}
	if err := h.notes.CreateNote(r.Context(), note); err != nil {
		log.Error("failed to create note", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}

	log.Info("note created", slog.String("note_id", note.ID))
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.NoteHandler.Update")

	body, err := readPatch(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if body.touches(noteWriteOnce...) {
		writeError(w, http.StatusForbidden, msgNotAllowed)
		return
	}

	note, ok := h.owned(w, r, log)
	if !ok {
		return
	}

	var patch models.NotePatch
	if err := body.decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	errs := blankFields(map[string]*string{"title": patch.Title, "body": patch.Body})
	if body.touches("folders") {
		folders, err := models.NormalizeFolders(patch.Folders)
		if err != nil {
			errs["folders"] = err.Error()
		}
		patch.Folders = folders
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	if err := h.notes.UpdateNote(r.Context(), note.ID, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgNoteNotFound)
			return
		}
		log.Error("failed to update note", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}
	writeMessage(w, msgUpdated)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.NoteHandler.Delete")

	note, ok := h.owned(w, r, log)
	if !ok {
		return
	}
	if err := h.notes.DeleteNote(r.Context(), note.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to delete note", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}
	writeMessage(w, msgDeleted)
}

func (h *NoteHandler) owned(w http.ResponseWriter, r *http.Request, log *slog.Logger) (*models.Note, bool) {
	note, err := h.notes.GetNote(r.Context(), mux.Vars(r)["noteId"])
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNoteNotFound)
		return nil, false
	case err != nil:
		log.Error("failed to load note", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return nil, false
	case note.Username != auth.GetUsernameFromContext(r.Context()):
		writeError(w, http.StatusForbidden, msgUnauthorized)
		return nil, false
	}
	return note, true
}
