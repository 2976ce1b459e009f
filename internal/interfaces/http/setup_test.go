package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Reportes-api/internal/application/auth"
	"github.com/jhoicas/Reportes-api/internal/application/profile"
	"github.com/jhoicas/Reportes-api/internal/application/report"
	apphttp "github.com/jhoicas/Reportes-api/internal/interfaces/http"
	"github.com/jhoicas/Reportes-api/internal/testutil"
	"github.com/jhoicas/Reportes-api/pkg/logger"
)

// testAPI es la API completa sobre dobles en memoria.
type testAPI struct {
	app      *fiber.App
	users    *testutil.UserRepo
	profiles *testutil.ProfileRepo
	reports  *testutil.ReportRepo
	files    *testutil.FileStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		users:    testutil.NewUserRepo(),
		profiles: testutil.NewProfileRepo(),
		reports:  testutil.NewReportRepo(),
		files:    testutil.NewFileStore(),
	}
	log := logger.Nop()
	projector := profile.NewProjector(api.users, api.profiles, log)
	authUC := auth.NewAuthUseCase(api.users, projector, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: 480, Issuer: testIssuer,
	}, log)
	reportUC := report.NewReportUseCase(api.reports, api.files, testutil.ReceiptStub{}, report.DefaultUploadPolicy(), log)

	ew := apphttp.NewErrorWriter(log, false)
	api.app = fiber.New(fiber.Config{ErrorHandler: ew.Handler})
	apphttp.Router(api.app, apphttp.RouterDeps{
		AuthUC:    authUC,
		Projector: projector,
		ReportUC:  reportUC,
		Errors:    ew,
		JWTSecret: testJWTSecret,
	})
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body io.Reader, contentType, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a *testAPI) doJSON(t *testing.T, method, path string, payload any, authHeader string) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return a.do(t, method, path, body, fiber.MIMEApplicationJSON, authHeader)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
