package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ahsanfayaz52/noteservice/internal/auth"
	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/store"
	"github.com/ahsanfayaz52/noteservice/internal/validation"
)

// multipartOverhead is headroom for form boundaries and headers on top of
// the image itself.
const multipartOverhead = 512 << 10

var userWriteOnce = []string{"username", "email", "createdAt", "imageUrl"}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// profileKey names the image object of username. It refuses names that
// could step outside profiles/.
func profileKey(username, ext string) (string, error) {
	if !validation.IsValidUsername(username) {
		return "", fmt.Errorf("invalid username %q", username)
	}
	return "profiles/" + username + ext, nil
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.UserHandler.GetUser")

	user, err := h.users.GetUser(r.Context(), auth.GetUsernameFromContext(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		log.Error("failed to load user", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.User{"userCredentials": user})
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.UserHandler.UpdateUser")

	body, err := readPatch(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if body.touches(userWriteOnce...) {
		writeError(w, http.StatusForbidden, msgNotAllowed)
		return
	}

	var patch models.UserPatch
	if err := body.decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	errs := blankFields(map[string]*string{
		"firstName":   patch.FirstName,
		"lastName":    patch.LastName,
		"phoneNumber": patch.PhoneNumber,
		"country":     patch.Country,
	})
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	err = h.users.UpdateUser(r.Context(), auth.GetUsernameFromContext(r.Context()), patch)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		log.Error("failed to update user", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}
	writeMessage(w, "Details added successfully")
}

func (h *UserHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r, "handlers.UserHandler.UploadImage")
	ctx := r.Context()
	username := auth.GetUsernameFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "Image is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image submitted")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := imageExtensions[contentType]
	if !ok {
		writeError(w, http.StatusBadRequest, "Wrong file type submitted")
		return
	}
	if header.Size > h.maxImageBytes {
		writeError(w, http.StatusBadRequest, "Image is too large")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read image", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}

	key, err := profileKey(username, ext)
	if err != nil {
		log.Warn("refusing image", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "Invalid username")
		return
	}
	for _, prior := range imageExtensions {
		priorKey, _ := profileKey(username, prior)
		if err := h.objects.Delete(ctx, priorKey); err != nil {
			log.Warn("failed to delete previous image", slog.String("error", err.Error()))
		}
	}

	if err := h.objects.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		log.Error("failed to store image", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}

	url := h.objects.URL(key)
	if err := h.users.UpdateUser(ctx, username, models.UserPatch{ImageURL: &url}); err != nil {
		log.Error("failed to set image url", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, msgSomethingBad)
		return
	}

	log.Info("profile image uploaded", slog.String("key", key))
	writeMessage(w, "Image uploaded successfully")
}
