package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signUpBody(username, email string) map[string]string {
	return map[string]string{
		"firstName":       "Ada",
		"lastName":        "Lovelace",
		"email":           email,
		"phoneNumber":     "+44 20 7946 0000",
		"country":         "UK",
		"username":        username,
		"password":        "secret1",
		"confirmPassword": "secret1",
	}
}

func signUp(t *testing.T, h *harness, username, email string) string {
	t.Helper()
	w := h.do(t, http.MethodPost, "/signup", "", signUpBody(username, email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]string](t, w)["token"]
}

func TestSignUpThenLogin(t *testing.T) {
	h := newHarness(t)

	token := signUp(t, h, "ada", "ada@example.com")
	username, err := h.provider.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ada", username)

	user, err := h.store.GetUser(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, t0, user.CreatedAt)

	w := h.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	username, err = h.provider.VerifyToken(decode[map[string]string](t, w)["token"])
	require.NoError(t, err)
	assert.Equal(t, "ada", username)
}

func TestSignUpValidation(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/signup", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode[map[string]string](t, w)
	for _, field := range []string{"firstName", "lastName", "email", "phoneNumber", "country", "username", "password", "confirmPassword"} {
		assert.Equal(t, "Must not be empty", errs[field], field)
	}

	body := signUpBody("ada", "not-an-email")
	body["confirmPassword"] = "other12"
	w = h.do(t, http.MethodPost, "/signup", "", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs = decode[map[string]string](t, w)
	assert.Equal(t, "Must be a valid email address", errs["email"])
	assert.Equal(t, "Passwords must be the same", errs["confirmPassword"])
}

func TestSignUpConflicts(t *testing.T) {
	h := newHarness(t)
	signUp(t, h, "ada", "ada@example.com")

	w := h.do(t, http.MethodPost, "/signup", "", signUpBody("ada", "other@example.com"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"username":"This username is already taken."}`, w.Body.String())

	w = h.do(t, http.MethodPost, "/signup", "", signUpBody("countess", "ada@example.com"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"email":"Email is already in use"}`, w.Body.String())

	_, err := h.store.GetUser(context.Background(), "countess")
	assert.Error(t, err)
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	signUp(t, h, "ada", "ada@example.com")

	tests := map[string]struct {
		body   map[string]string
		status int
		want   string
	}{
		"wrong password": {
			body:   map[string]string{"email": "ada@example.com", "password": "nope123"},
			status: http.StatusForbidden,
			want:   `{"general":"Wrong credentials. Try again."}`,
		},
		"unknown email": {
			body:   map[string]string{"email": "who@example.com", "password": "secret1"},
			status: http.StatusForbidden,
			want:   `{"general":"Wrong credentials. Try again."}`,
		},
		"empty": {
			body:   map[string]string{"email": " ", "password": ""},
			status: http.StatusBadRequest,
			want:   `{"email":"Must not be empty","password":"Must not be empty"}`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			w := h.do(t, http.MethodPost, "/login", "", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func resetToken(t *testing.T, body string) string {
	t.Helper()
	i := strings.Index(body, "http://")
	require.GreaterOrEqual(t, i, 0)
	u, err := url.Parse(body[i:])
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestPasswordReset(t *testing.T) {
	h := newHarness(t)
	signUp(t, h, "ada", "ada@example.com")

	w := h.do(t, http.MethodPost, "/reset", "", map[string]string{"email": "who@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(t, http.MethodPost, "/reset", "", map[string]string{"email": "ada@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Password reset email sent"}`, w.Body.String())
	require.Len(t, h.mailer.sent, 1)
	assert.Equal(t, "ada@example.com", h.mailer.sent[0].To)

	token := resetToken(t, h.mailer.sent[0].Body)
	confirm := map[string]string{"token": token, "password": "changed1", "confirmPassword": "changed1"}

	w = h.do(t, http.MethodPost, "/reset/confirm", "", confirm)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ada@example.com", "password": "changed1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(t, http.MethodPost, "/reset/confirm", "", confirm)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired reset token"}`, w.Body.String())
}

func TestGetAndUpdateUser(t *testing.T) {
	h := newHarness(t)
	signUp(t, h, "ada", "ada@example.com")

	w := h.do(t, http.MethodPost, "/user", "ada", map[string]string{"country": "France", "firstName": "Augusta"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(t, http.MethodGet, "/user", "ada", nil)
	require.Equal(t, http.StatusOK, w.Code)
	creds := decode[map[string]map[string]any](t, w)["userCredentials"]
	assert.Equal(t, "France", creds["country"])
	assert.Equal(t, "Augusta", creds["firstName"])
	assert.Equal(t, "Lovelace", creds["lastName"])
	assert.Equal(t, "ada@example.com", creds["email"])

	for _, field := range []string{"username", "email", "createdAt", "imageUrl"} {
		w = h.do(t, http.MethodPost, "/user", "ada", map[string]string{field: "x"})
		assert.Equal(t, http.StatusForbidden, w.Code, field)
	}

	w = h.do(t, http.MethodPost, "/user", "ada", map[string]string{"bio": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/user", "ada", map[string]string{"lastName": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"lastName":"Must not be empty"}`, w.Body.String())

	w = h.do(t, http.MethodGet, "/user", "ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (h *harness) upload(t *testing.T, user, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="image"; filename="avatar"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/user/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(testUserHeader, user)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestUploadImage(t *testing.T) {
	h := newHarness(t)
	signUp(t, h, "ada", "ada@example.com")

	w := h.upload(t, "ada", "image/png", []byte("png-bytes"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Image uploaded successfully"}`, w.Body.String())

	user, err := h.store.GetUser(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/uploads/profiles/ada.png", user.ImageURL)

	pngPath := filepath.Join(h.objects.Root, "profiles", "ada.png")
	data, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	w = h.upload(t, "ada", "image/jpeg", []byte("jpeg-bytes"))
	require.Equal(t, http.StatusOK, w.Code)
	_, err = os.Stat(pngPath)
	assert.True(t, os.IsNotExist(err))

	user, err = h.store.GetUser(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/uploads/profiles/ada.jpg", user.ImageURL)
}

func TestUploadImageRejected(t *testing.T) {
	h := newHarness(t)
	signUp(t, h, "ada", "ada@example.com")

	w := h.upload(t, "ada", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Wrong file type submitted"}`, w.Body.String())

	w = h.upload(t, "ada", "image/png", bytes.Repeat([]byte("x"), 2<<10))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Image is too large"}`, w.Body.String())

	user, err := h.store.GetUser(context.Background(), "ada")
	require.NoError(t, err)
	assert.Empty(t, user.ImageURL)
}

func TestSignUpRejectsUnsafeUsernames(t *testing.T) {
	h := newHarness(t)

	for _, username := range []string{"mallory/../alice", "a b", strings.Repeat("u", 65)} {
		w := h.do(t, http.MethodPost, "/signup", "", signUpBody(username, "m@example.com"))
		assert.Equal(t, http.StatusBadRequest, w.Code, username)
		assert.Equal(t, "Must be at most 64 letters, digits, '-' or '_'", decode[map[string]string](t, w)["username"], username)
	}

	_, err := h.store.GetUserByEmail(context.Background(), "m@example.com")
	assert.Error(t, err)
}

func TestUploadImageStaysInOwnKey(t *testing.T) {
	h := newHarness(t)
	signUp(t, h, "alice", "alice@example.com")

	w := h.upload(t, "alice", "image/png", []byte("alice-bytes"))
	require.Equal(t, http.StatusOK, w.Code)

	w = h.upload(t, "mallory/../alice", "image/png", []byte("mallory-bytes"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid username"}`, w.Body.String())

	data, err := os.ReadFile(filepath.Join(h.objects.Root, "profiles", "alice.png"))
	require.NoError(t, err)
	assert.Equal(t, "alice-bytes", string(data))

	user, err := h.store.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/uploads/profiles/alice.png", user.ImageURL)
}

func TestLoginRejectionsLoggedApart(t *testing.T) {
	h := newHarness(t)
	signUp(t, h, "ada", "ada@example.com")

	unknown := h.do(t, http.MethodPost, "/login", "", map[string]string{"email": "who@example.com", "password": "secret1"})
	assert.Contains(t, h.logs.String(), `reason="user not found"`)

	wrong := h.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ada@example.com", "password": "nope123"})
	assert.Contains(t, h.logs.String(), `reason="invalid credentials"`)

	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}
