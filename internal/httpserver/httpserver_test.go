package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smerino/gestion/internal/hash"
	authmw "github.com/smerino/gestion/internal/middleware/auth"
	"github.com/smerino/gestion/internal/models"
	"github.com/smerino/gestion/internal/repo"
	"github.com/smerino/gestion/internal/service"
	"github.com/smerino/gestion/internal/tenantstore"
)

const (
	testSuperEmail    = "root@gestion.test"
	testPassword      = "Secret123"
	testAccessSecret  = "test-jwt-secret"
	testRefreshSecret = "test-refresh-secret"
)

type testApp struct {
	e   *echo.Echo
	svc *service.SessionService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Empresa{},
		&models.Usuario{},
		&models.RefreshToken{},
		&models.PasswordResetToken{},
	))

	stores := tenantstore.NewManager(t.TempDir())
	t.Cleanup(func() { stores.Close() })

	svc := &service.SessionService{
		Repo:          repo.GormRepo{DB: db},
		Stores:        stores,
		AccessSecret:  []byte(testAccessSecret),
		RefreshSecret: []byte(testRefreshSecret),
		ResetBaseURL:  "http://localhost:8080",
	}

	pwHash, err := hash.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, svc.Repo.CreateUsuario(context.Background(), &models.Usuario{
		ID:           uuid.New(),
		Email:        testSuperEmail,
		PasswordHash: pwHash,
		Nombre:       "Root",
		Rol:          models.RolSuperadmin,
		Activo:       true,
	}))

	e := echo.New()
	Register(e, &Deps{
		Auth:      &AuthHTTP{Svc: svc},
		Admin:     &AdminHTTP{Svc: svc},
		Productos: &ProductosHTTP{},
		AuthMw:    authmw.NewMiddleware([]byte(testAccessSecret), stores),
	})
	return &testApp{e: e, svc: svc}
}

func (a *testApp) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func (a *testApp) login(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decodeJSON(t, rec, &res)
	return res.AccessToken, res.RefreshToken
}

// createEmpresa provisions a tenant through the API as the seeded
// superadmin and returns its id.
func (a *testApp) createEmpresa(t *testing.T, nombre, adminEmail string) string {
	t.Helper()

	access, _ := a.login(t, testSuperEmail, testPassword)
	rec := a.do(t, http.MethodPost, "/api/v1/admin/empresas", access, map[string]string{
		"nombre":         nombre,
		"admin_email":    adminEmail,
		"admin_password": testPassword,
		"admin_nombre":   "Admin " + nombre,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		EmpresaID string `json:"empresa_id"`
	}
	decodeJSON(t, rec, &res)
	require.NotEmpty(t, res.EmpresaID)
	return res.EmpresaID
}
