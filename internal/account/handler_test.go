package account

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/kavya-apps/userhub/internal/auth"
	"github.com/kavya-apps/userhub/internal/middleware"
	"github.com/kavya-apps/userhub/internal/models"
	"github.com/kavya-apps/userhub/internal/upload"
)

type testEnv struct {
	*fixture
	router *chi.Mux
}

// newTestEnv wires the handler into a router the same way cmd/server does.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	f := newFixture()

	staging, err := upload.NewStaging(t.TempDir())
	require.NoError(t, err)
	h := NewHandler(f.svc, staging)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", h.Register)
		r.Post("/users/login", h.Login)
		r.Get("/users/{id}", h.GetUserByID)
		r.Post("/upload", h.Upload)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(f.tokens))
			r.Put("/users/profile", h.UpdateProfile)
			r.Delete("/users/profile/{userId}", h.DeleteProfile)
			r.Get("/users", h.ListUsers)
			r.With(middleware.RequireAdmin).Get("/admin/events", h.Events)
		})
	})

	return &testEnv{fixture: f, router: r}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) bearerFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := e.tokens.Issue(u)
	require.NoError(t, err)
	return "Bearer " + tok
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/api/users/register", jsonBody(t, models.RegisterRequest{
		Username: "ana", Email: "a@x.com", Phone: 5551234, Password: "pw123456",
	}))
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Logged In", body["message"])

	data := body["data"].(map[string]interface{})
	require.Equal(t, "a@x.com", data["email"])
	require.NotEmpty(t, data["userId"])

	claims, err := env.tokens.Verify(body["token"].(string))
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, data["userId"], claims.UserID)
}

func TestRegisterEndpoint_MissingFields(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/api/users/register", jsonBody(t, models.RegisterRequest{
		Username: "ana", Email: "a@x.com",
	}))
	require.Equal(t, http.StatusBadRequest, env.do(t, req).Code)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seedUser(t, env.fixture, "a@x.com", "pw123456", "", nil)

	req := httptest.NewRequest("POST", "/api/users/register", jsonBody(t, models.RegisterRequest{
		Username: "ana", Email: "a@x.com", Phone: 5551234, Password: "pw123456",
	}))
	rec := env.do(t, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "user already exists", decodeBody(t, rec)["error"])
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	seedUser(t, env.fixture, "a@x.com", "pw123456", "", nil)

	req := httptest.NewRequest("POST", "/api/users/login", jsonBody(t, models.LoginRequest{
		Email: "a@x.com", Password: "nope",
	}))
	rec := env.do(t, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "incorrect password", body["error"])
	require.NotContains(t, body, "token")
}

func TestLoginEndpoint_MissingFields(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/api/users/login", strings.NewReader(`{"email":"a@x.com"}`))
	require.Equal(t, http.StatusBadRequest, env.do(t, req).Code)
}

func TestUpdateProfileEndpoint_RequiresBearer(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	req := httptest.NewRequest("PUT", "/api/users/profile", nil)
	require.Equal(t, http.StatusUnauthorized, env.do(t, req).Code)
}

func TestUpdateProfileEndpoint_ExpiredToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	u := seedUser(t, env.fixture, "a@x.com", "pw123456", "", nil)

	expired := auth.NewTokenService("test-secret", -time.Minute)
	tok, err := expired.Issue(u)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	require.Equal(t, http.StatusUnauthorized, env.do(t, req).Code)
}

func profileForm(t *testing.T, fields map[string]string, avatar string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if avatar != "" {
		part, err := mw.CreateFormFile("avatar", avatar)
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUpdateProfileEndpoint_NoAvatarClearsImage(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	prior := "http://assets.local/avatars/old.png"
	u := seedUser(t, env.fixture, "a@x.com", "pw123456", "", &prior)

	body, ct := profileForm(t, map[string]string{
		"username": "ana2", "email": "a2@x.com", "phone": "5559999",
	}, "")
	req := httptest.NewRequest("PUT", "/api/users/profile", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", env.bearerFor(t, u))
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]interface{})
	require.Nil(t, user["image"])
	require.Equal(t, "ana2", user["username"])
}

func TestUpdateProfileEndpoint_WithAvatar(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	u := seedUser(t, env.fixture, "a@x.com", "pw123456", "", nil)

	body, ct := profileForm(t, map[string]string{
		"username": "ana", "email": "a@x.com", "phone": "5551234",
	}, "me.png")
	req := httptest.NewRequest("PUT", "/api/users/profile", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", env.bearerFor(t, u))
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]interface{})
	require.Equal(t, env.assets.url, user["image"])
	require.Len(t, env.assets.uploads, 1)
}

func TestUpdateProfileEndpoint_BadPhone(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	u := seedUser(t, env.fixture, "a@x.com", "pw123456", "", nil)

	body, ct := profileForm(t, map[string]string{
		"username": "ana", "email": "a@x.com", "phone": "not-a-number",
	}, "")
	req := httptest.NewRequest("PUT", "/api/users/profile", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", env.bearerFor(t, u))

	require.Equal(t, http.StatusBadRequest, env.do(t, req).Code)
}

func TestDeleteProfileEndpoint_SelfAndForbidden(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	caller := seedUser(t, env.fixture, "a@x.com", "pw123456", "", nil)
	other := seedUser(t, env.fixture, "b@x.com", "pw123456", "", nil)

	req := httptest.NewRequest("DELETE", "/api/users/profile/"+other.ID.Hex(), nil)
	req.Header.Set("Authorization", env.bearerFor(t, caller))
	require.Equal(t, http.StatusForbidden, env.do(t, req).Code)

	req = httptest.NewRequest("DELETE", "/api/users/profile/"+caller.ID.Hex(), nil)
	req.Header.Set("Authorization", env.bearerFor(t, caller))
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "Profile deleted successfully", body["message"])
	user := body["user"].(map[string]interface{})
	require.Equal(t, caller.ID.Hex(), user["userId"])
}

func TestListUsersEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := seedUser(t, env.fixture, "root@x.com", "pw123456", "admin", nil)
	plain := seedUser(t, env.fixture, "b@x.com", "pw123456", "", nil)

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", env.bearerFor(t, plain))
	require.Equal(t, http.StatusForbidden, env.do(t, req).Code)

	req = httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", env.bearerFor(t, admin))
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	users := decodeBody(t, rec)["users"].([]interface{})
	require.Len(t, users, 1)
	require.Equal(t, plain.ID.Hex(), users[0].(map[string]interface{})["userId"])
}

func TestGetUserByIDEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	u := seedUser(t, env.fixture, "a@x.com", "pw123456", "", nil)

	rec := env.do(t, httptest.NewRequest("GET", "/api/users/"+u.ID.Hex(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "a@x.com", decodeBody(t, rec)["email"])

	rec = env.do(t, httptest.NewRequest("GET", "/api/users/unknown-id", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "pic.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	require.Equal(t, "Upload was successful", resp["message"])
	require.Equal(t, env.assets.url, resp["url"])
}

func TestUploadEndpoint_MissingImage(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	require.Equal(t, http.StatusUnprocessableEntity, env.do(t, req).Code)
}

func TestEventsEndpoint_AdminGate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	admin := seedUser(t, env.fixture, "root@x.com", "pw123456", "admin", nil)
	plain := seedUser(t, env.fixture, "b@x.com", "pw123456", "", nil)

	_, _, err := env.svc.Login(context.Background(), "b@x.com", "pw123456")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/admin/events", nil)
	req.Header.Set("Authorization", env.bearerFor(t, plain))
	require.Equal(t, http.StatusForbidden, env.do(t, req).Code)

	req = httptest.NewRequest("GET", "/api/admin/events", nil)
	req.Header.Set("Authorization", env.bearerFor(t, admin))
	rec := env.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	events := decodeBody(t, rec)["events"].([]interface{})
	require.Len(t, events, 1)
}
