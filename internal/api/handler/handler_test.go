package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelgate/hostelgate/internal/api/middleware"
	"github.com/hostelgate/hostelgate/internal/capture"
	"github.com/hostelgate/hostelgate/internal/domain"
	"github.com/hostelgate/hostelgate/internal/provider/mock"
	"github.com/hostelgate/hostelgate/internal/recognizer"
	"github.com/hostelgate/hostelgate/internal/store"
	"github.com/hostelgate/hostelgate/internal/summary"
	"github.com/hostelgate/hostelgate/internal/ws"
)

type testEnv struct {
	app   *fiber.App
	store *store.Store
	coord *recognizer.Coordinator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "data.json"), slog.Default())
	require.NoError(t, err)

	coord := recognizer.New(recognizer.Options{
		Store:    s,
		Provider: mock.New(),
		Camera:   &capture.FakeCamera{HoldOpen: true},
	})

	hub := ws.NewHub()
	go hub.Run()

	env := &testEnv{store: s, coord: coord}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(slog.Default()),
	})

	identityHandler := NewIdentityHandler(coord, s, hub, slog.Default())
	summaryHandler := NewSummaryHandler(summary.New(s), slog.Default())

	v1 := app.Group("/v1")
	v1.Post("/identities", identityHandler.Register)
	v1.Get("/identities", identityHandler.List)
	v1.Get("/identities/:id", identityHandler.Get)
	v1.Delete("/identities/:id", identityHandler.Delete)
	v1.Get("/identities/:id/logs", identityHandler.Logs)
	v1.Get("/summary", summaryHandler.Group)
	v1.Get("/summary/identity/:id", summaryHandler.Identity)

	recognitionHandler := NewRecognitionHandler(coord, s, nil, hub, nil, slog.Default())
	v1.Post("/logs", recognitionHandler.Log)
	v1.Get("/logs", recognitionHandler.AllLogs)
	v1.Get("/recognition", recognitionHandler.Status)
	v1.Post("/recognition/session", recognitionHandler.StartSession)
	v1.Delete("/recognition/session", recognitionHandler.StopSession)
	v1.Post("/voice/identify", recognitionHandler.VoiceIdentify)

	env.app = app
	return env
}

// registerForm builds a multipart registration request. The image part gets
// an explicit JPEG content type, which the handler validates.
func registerForm(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if image != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="face.jpg"`)
		header.Set("Content-Type", "image/jpeg")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/identities", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func testImage(seed byte) []byte {
	img := bytes.Repeat([]byte{seed}, 128)
	return img
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func registerResident(t *testing.T, env *testEnv, key, name string, seed byte) IdentityResponse {
	t.Helper()
	req := registerForm(t, map[string]string{
		"key": key, "name": name, "hostel": "North", "room": "212",
	}, testImage(seed))
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out IdentityResponse
	decodeJSON(t, resp, &out)
	return out
}

func TestRegisterIdentity(t *testing.T) {
	env := newTestEnv(t)

	out := registerResident(t, env, "b2021034", "Asha Rao", 1)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "b2021034", out.Key)
	assert.Equal(t, "Asha Rao", out.Name)

	stored, ok := env.store.GetByKey("b2021034")
	require.True(t, ok)
	assert.NotEmpty(t, stored.Embedding)
}

func TestRegisterIdentityValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		fields     map[string]string
		image      []byte
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing name",
			fields:     map[string]string{"key": "b2021034"},
			image:      testImage(1),
			wantStatus: 422,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "missing image",
			fields:     map[string]string{"key": "b2021034", "name": "Asha Rao"},
			image:      nil,
			wantStatus: 422,
			wantCode:   "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.app.Test(registerForm(t, tt.fields, tt.image), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			decodeJSON(t, resp, &body)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestRegisterDuplicateKey(t *testing.T) {
	env := newTestEnv(t)
	registerResident(t, env, "b2021034", "Asha Rao", 1)

	req := registerForm(t, map[string]string{
		"key": "b2021034", "name": "Someone Else",
	}, testImage(2))
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestListAndGetIdentities(t *testing.T) {
	env := newTestEnv(t)
	registerResident(t, env, "b2021034", "Asha Rao", 1)
	registerResident(t, env, "c2019117", "Dev Mehta", 2)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/v1/identities", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list struct {
		Identities []IdentityResponse `json:"identities"`
	}
	decodeJSON(t, resp, &list)
	require.Len(t, list.Identities, 2)
	assert.Equal(t, "Asha Rao", list.Identities[0].Name)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/v1/identities/2", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got IdentityResponse
	decodeJSON(t, resp, &got)
	assert.Equal(t, "Dev Mehta", got.Name)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/v1/identities/99", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/v1/identities/abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteIdentityCascades(t *testing.T) {
	env := newTestEnv(t)
	out := registerResident(t, env, "b2021034", "Asha Rao", 1)

	logBody := strings.NewReader(fmt.Sprintf(`{"identity_id":%d,"action":"enter"}`, out.ID))
	req := httptest.NewRequest(http.MethodPost, "/v1/logs", logBody)
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/v1/identities/%d", out.ID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/v1/logs", nil), -1)
	require.NoError(t, err)
	var logs struct {
		Logs []domain.LogEntry `json:"logs"`
	}
	decodeJSON(t, resp, &logs)
	assert.Empty(t, logs.Logs)
}

func TestLogAction(t *testing.T) {
	env := newTestEnv(t)
	out := registerResident(t, env, "b2021034", "Asha Rao", 1)

	body := strings.NewReader(fmt.Sprintf(`{"identity_id":%d,"action":"enter"}`, out.ID))
	req := httptest.NewRequest(http.MethodPost, "/v1/logs", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var entry domain.LogEntry
	decodeJSON(t, resp, &entry)
	assert.Equal(t, domain.ActionEnter, entry.Action)
	assert.Equal(t, "Asha Rao", entry.Name, "identity fields denormalized into the entry")
}

func TestLogActionValidation(t *testing.T) {
	env := newTestEnv(t)
	out := registerResident(t, env, "b2021034", "Asha Rao", 1)

	body := strings.NewReader(fmt.Sprintf(`{"identity_id":%d,"action":"entry"}`, out.ID))
	req := httptest.NewRequest(http.MethodPost, "/v1/logs", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 422, resp.StatusCode)

	body = strings.NewReader(`{"identity_id":999,"action":"enter"}`)
	req = httptest.NewRequest(http.MethodPost, "/v1/logs", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRecognitionStatusAndSession(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/v1/recognition", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status StatusResponse
	decodeJSON(t, resp, &status)
	assert.False(t, status.Running)
	assert.Equal(t, int64(0), status.Latest.Sequence)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodPost, "/v1/recognition/session", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodPost, "/v1/recognition/session", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodDelete, "/v1/recognition/session", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodDelete, "/v1/recognition/session", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestVoiceIdentifyUnavailable(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodPost, "/v1/voice/identify", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

type fakeVoice struct {
	identity *domain.Identity
	err      error
}

func (f *fakeVoice) Identify(_ context.Context) (*domain.Identity, error) {
	return f.identity, f.err
}

func TestVoiceIdentifyLogsConfirmedAction(t *testing.T) {
	env := newTestEnv(t)
	out := registerResident(t, env, "b2021034", "Asha Rao", 1)

	identity, ok := env.store.Get(out.ID)
	require.True(t, ok)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(slog.Default())})
	hub := ws.NewHub()
	go hub.Run()
	h := NewRecognitionHandler(env.coord, env.store, &fakeVoice{identity: identity}, hub, nil, slog.Default())
	app.Post("/v1/voice/identify", h.VoiceIdentify)

	body := strings.NewReader(`{"action":"leave"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/voice/identify", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Identity IdentityResponse `json:"identity"`
		Log      *domain.LogEntry `json:"log"`
	}
	decodeJSON(t, resp, &result)
	assert.Equal(t, "Asha Rao", result.Identity.Name)
	require.NotNil(t, result.Log)
	assert.Equal(t, domain.ActionLeave, result.Log.Action)
}

func TestVoiceIdentifyFails(t *testing.T) {
	env := newTestEnv(t)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(slog.Default())})
	hub := ws.NewHub()
	go hub.Run()
	h := NewRecognitionHandler(env.coord, env.store, &fakeVoice{err: domain.ErrVoiceFailed}, hub, nil, slog.Default())
	app.Post("/v1/voice/identify", h.VoiceIdentify)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/v1/voice/identify", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSummaryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	out := registerResident(t, env, "b2021034", "Asha Rao", 1)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/v1/summary/identity/%d?days=7", out.ID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report SummaryResponse
	decodeJSON(t, resp, &report)
	assert.Equal(t, "Asha Rao has no activity recorded this week.", report.Summary)
	assert.Equal(t, 7, report.Days)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/v1/summary/identity/99", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/v1/summary?days=1", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &report)
	assert.Equal(t, "No activity recorded today.", report.Summary)
}
