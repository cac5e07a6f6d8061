package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ahsanfayaz52/noteservice/internal/auth"
	"github.com/ahsanfayaz52/noteservice/internal/mail"
	"github.com/ahsanfayaz52/noteservice/internal/models"
	"github.com/ahsanfayaz52/noteservice/internal/objectstore"
	"github.com/ahsanfayaz52/noteservice/internal/store/memory"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testUserHeader = "X-Test-User"

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// tickingClock returns t0, t0+1s, t0+2s, ...
type tickingClock struct {
	mu sync.Mutex
	n  int
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := t0.Add(time.Duration(c.n) * time.Second)
	c.n++
	return t
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type harness struct {
	store    *memory.Store
	provider *auth.Provider
	mailer   *recordingMailer
	objects  *objectstore.DirStore
	router   *mux.Router
	logs     *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logs := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(logs, nil))
	st := memory.New()
	mailer := &recordingMailer{}
	jwtService := auth.NewJWTService("test-secret", time.Hour, time.Hour)
	provider := auth.NewProvider(st, jwtService, mailer, "http://app/reset", auth.WithBcryptCost(bcrypt.MinCost))

	objects, err := objectstore.NewDir(t.TempDir(), "http://files.test/uploads")
	require.NoError(t, err)

	clock := &tickingClock{}
	todos := NewTodoHandler(st, log, clock.Now)
	notes := NewNoteHandler(st, log, clock.Now)
	users := NewUserHandler(st, provider, objects, log, 1<<10)
	users.SetClock(clock.Now)

	r := mux.NewRouter()
	r.HandleFunc("/signup", users.SignUp).Methods(http.MethodPost)
	r.HandleFunc("/login", users.Login).Methods(http.MethodPost)
	r.HandleFunc("/reset", users.ResetPassword).Methods(http.MethodPost)
	r.HandleFunc("/reset/confirm", users.ConfirmPasswordReset).Methods(http.MethodPost)

	s := r.PathPrefix("/").Subrouter()
	s.Use(asTestUser)
	s.HandleFunc("/todos", todos.List).Methods(http.MethodGet)
	s.HandleFunc("/todo", todos.Create).Methods(http.MethodPost)
	s.HandleFunc("/todo/{todoId}", todos.Get).Methods(http.MethodGet)
	s.HandleFunc("/todo/{todoId}", todos.Update).Methods(http.MethodPut)
	s.HandleFunc("/todo/{todoId}", todos.Delete).Methods(http.MethodDelete)
	s.HandleFunc("/notes", notes.List).Methods(http.MethodGet)
	s.HandleFunc("/notes", notes.Create).Methods(http.MethodPost)
	s.HandleFunc("/note/{noteId}", notes.Get).Methods(http.MethodGet)
	s.HandleFunc("/note/{noteId}", notes.Update).Methods(http.MethodPut)
	s.HandleFunc("/note/{noteId}", notes.Delete).Methods(http.MethodDelete)
	s.HandleFunc("/user", users.GetUser).Methods(http.MethodGet)
	s.HandleFunc("/user", users.UpdateUser).Methods(http.MethodPost)
	s.HandleFunc("/user/image", users.UploadImage).Methods(http.MethodPost)

	return &harness{store: st, provider: provider, mailer: mailer, objects: objects, router: r, logs: logs}
}

// asTestUser stands in for the JWT middleware: the caller is named by a header.
func asTestUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := &models.User{Username: r.Header.Get(testUserHeader)}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

func (h *harness) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
