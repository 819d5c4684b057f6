package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/patholens/patholens-api/internal/config"
	"github.com/patholens/patholens-api/internal/logging"
	"github.com/patholens/patholens-api/internal/server"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		AppName:           "patholens-test",
		AppEnv:            "test",
		MaxImageBytes:     1 << 20,
		BcryptCost:        bcrypt.MinCost,
		StoragePath:       t.TempDir(),
		ScratchDir:        t.TempDir(),
		ClassifierCommand: "python3",
		ClassifierScript:  "does-not-run.py",
		ClassifierTimeout: time.Second,
	}

	app := server.New(cfg, logging.Discard())
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    map[string]any    `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func registerUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	status, env := doJSON(t, app, http.MethodPost, "/v1/register", "", map[string]any{
		"name":                  "Test Doctor",
		"email":                 email,
		"password":              "supersecret",
		"password_confirmation": "supersecret",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%+v)", status, env)
	}
	token, _ := env.Data["token"].(string)
	if token == "" {
		t.Fatalf("register: no token in response %+v", env.Data)
	}
	return token
}

func TestRegisterLoginAndMe(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "doc@example.com")

	status, env := doJSON(t, app, http.MethodPost, "/v1/login", "", map[string]any{
		"email":    "doc@example.com",
		"password": "supersecret",
	})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("login: expected 200 success, got %d (%+v)", status, env)
	}
	token, _ := env.Data["token"].(string)

	status, env = doJSON(t, app, http.MethodGet, "/v1/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: expected 200, got %d (%+v)", status, env)
	}
	user, _ := env.Data["user"].(map[string]any)
	if user["email"] != "doc@example.com" {
		t.Fatalf("me: unexpected user %+v", user)
	}
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/v1/me", "/v1/patients"} {
		status, env := doJSON(t, app, http.MethodGet, path, "", nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, status)
		}
		if env.Success {
			t.Fatalf("%s: expected failure envelope, got %+v", path, env)
		}
	}

	status, _ := doJSON(t, app, http.MethodGet, "/v1/me", "not-a-real-token", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("bogus token: expected 401, got %d", status)
	}
}

func TestLoginValidationAndBadCredentials(t *testing.T) {
	app := newTestApp(t)
	registerUser(t, app, "doc@example.com")

	status, env := doJSON(t, app, http.MethodPost, "/v1/register", "", map[string]any{
		"name":                  "Another",
		"email":                 "not-an-email",
		"password":              "supersecret",
		"password_confirmation": "supersecret",
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("bad email: expected 422, got %d (%+v)", status, env)
	}
	if _, ok := env.Errors["email"]; !ok {
		t.Fatalf("bad email: expected email field error, got %+v", env.Errors)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/v1/login", "", map[string]any{
		"email":    "doc@example.com",
		"password": "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "doc@example.com")

	status, _ := doJSON(t, app, http.MethodPost, "/v1/logout", token, nil)
	if status != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodGet, "/v1/me", token, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %d", status)
	}
}

func TestPatientLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "doc@example.com")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, value := range map[string]string{
		"patient_name":   "John Doe",
		"age":            "45",
		"gender":         "male",
		"contact_number": "5550001111",
	} {
		if err := w.WriteField(field, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	fw, err := w.CreateFormFile("diagnosis_image", "lesion.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(pngHeader)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/patients", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create patient: expected 201, got %d (%+v)", resp.StatusCode, env)
	}
	created, _ := env.Data["patient"].(map[string]any)
	patientID, _ := created["id"].(string)
	if patientID == "" {
		t.Fatalf("create patient: no id in %+v", env.Data)
	}
	if created["diagnosis_image_url"] == nil {
		t.Fatalf("create patient: no image URL in %+v", created)
	}

	status, env := doJSON(t, app, http.MethodGet, "/v1/patients", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", status)
	}
	if count, _ := env.Data["count"].(float64); count != 1 {
		t.Fatalf("list: expected count 1, got %v", env.Data["count"])
	}

	result := "benign"
	status, env = doJSON(t, app, http.MethodPut, "/v1/patients/"+patientID, token, map[string]any{
		"result":     result,
		"confidence": 91.2,
	})
	if status != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%+v)", status, env)
	}
	updated, _ := env.Data["patient"].(map[string]any)
	if updated["result"] != result {
		t.Fatalf("update: expected result %q, got %v", result, updated["result"])
	}

	otherToken := registerUser(t, app, "other@example.com")
	status, _ = doJSON(t, app, http.MethodGet, "/v1/patients/"+patientID, otherToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("cross-user get: expected 404, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodDelete, "/v1/patients/"+patientID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", status)
	}
	status, _ = doJSON(t, app, http.MethodGet, "/v1/patients/"+patientID, token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", status)
	}
}

func TestProfileImageLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := registerUser(t, app, "doc@example.com")

	status, env := doJSON(t, app, http.MethodGet, "/v1/me/image", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get before upload: expected 200, got %d", status)
	}
	if env.Data["image"] != nil {
		t.Fatalf("get before upload: expected null image, got %+v", env.Data["image"])
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "me.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(pngHeader)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/me/image", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d", resp.StatusCode)
	}

	status, env = doJSON(t, app, http.MethodGet, "/v1/me/image", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get after upload: expected 200, got %d", status)
	}
	image, _ := env.Data["image"].(map[string]any)
	if url, _ := image["url"].(string); url == "" {
		t.Fatalf("get after upload: no url in %+v", env.Data)
	}

	status, _ = doJSON(t, app, http.MethodDelete, "/v1/me/image", token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", status)
	}
	status, _ = doJSON(t, app, http.MethodDelete, "/v1/me/image", token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", status)
	}

	status, env = doJSON(t, app, http.MethodGet, "/v1/me/image", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get after delete: expected 200, got %d", status)
	}
	if env.Data["image"] != nil {
		t.Fatalf("get after delete: expected null image, got %+v", env.Data["image"])
	}
}

func TestClassifyImageRejectsBadUpload(t *testing.T) {
	app := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", "lesion.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("not an image at all"))
	w.Close()

	// No bearer token: classification is open to unauthenticated clients.
	req := httptest.NewRequest(http.MethodPost, "/v1/classify-image", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("classify: expected 422, got %d", resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Success {
		t.Fatalf("expected failure envelope, got %+v", env)
	}
	if _, ok := env.Errors["image"]; !ok {
		t.Fatalf("expected image field error, got %+v", env.Errors)
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", resp.StatusCode)
	}
}
