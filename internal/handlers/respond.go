package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/ahsanfayaz52/noteservice/internal/middleware"
)

const maxJSONBody = 1 << 20

const (
	msgNotEmpty     = "Must not be empty"
	msgInvalidBody  = "Invalid request body"
	msgUnauthorized = "Unauthorized"
	msgNotAllowed   = "Not allowed to edit"
	msgUpdated      = "Updated successfully"
	msgDeleted      = "Delete successful"
	msgSomethingBad = "Something went wrong, please try again"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func requestLogger(log *slog.Logger, r *http.Request, op string) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst)
}

// patchBody is an update payload read once and inspected before decoding.
// A body that is not a JSON object is kept with err set so callers can
// finish their permission checks before answering 400.
type patchBody struct {
	raw  []byte
	keys map[string]json.RawMessage
	err  error
}

// readPatch fails only when the body can not be read.
func readPatch(w http.ResponseWriter, r *http.Request) (*patchBody, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return nil, err
	}
	p := &patchBody{raw: raw}
	if err := json.Unmarshal(raw, &p.keys); err != nil {
		p.err = err
	} else if p.keys == nil {
		p.err = errors.New("expected a JSON object")
	}
	return p, nil
}

// touches reports whether the payload names any of fields.
func (p *patchBody) touches(fields ...string) bool {
	for k := range p.keys {
		if slices.Contains(fields, k) {
			return true
		}
	}
	return false
}

// decode fills dst, rejecting malformed bodies and fields dst does not declare.
func (p *patchBody) decode(dst any) error {
	if p.err != nil {
		return fmt.Errorf("decode patch: %w", p.err)
	}
	dec := json.NewDecoder(bytes.NewReader(p.raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}
	return nil
}

// blankFields returns a field error map for supplied strings that trim to empty.
func blankFields(fields map[string]*string) map[string]string {
	errs := map[string]string{}
	for name, v := range fields {
		if v != nil && strings.TrimSpace(*v) == "" {
			errs[name] = msgNotEmpty
		}
	}
	return errs
}
