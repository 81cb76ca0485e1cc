package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndMe(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	empresaID := app.createEmpresa(t, "Demo SA", "admin@demo.com")

	rec := app.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "admin@demo.com", "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			Nombre        string `json:"nombre"`
			Email         string `json:"email"`
			Rol           string `json:"rol"`
			EmpresaNombre string `json:"empresa_nombre"`
			TenantID      string `json:"tenant_id"`
		} `json:"user"`
	}
	decodeJSON(t, rec, &res)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "admin", res.User.Rol)
	assert.Equal(t, "Demo SA", res.User.EmpresaNombre)
	assert.Equal(t, empresaID, res.User.TenantID)

	rec = app.do(t, http.MethodGet, "/api/v1/auth/me", res.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me map[string]string
	decodeJSON(t, rec, &me)
	assert.Equal(t, "admin@demo.com", me["email"])
	assert.Equal(t, "admin", me["rol"])
	assert.Equal(t, empresaID, me["tenant_id"])
	assert.Equal(t, "Demo SA", me["empresa_nombre"])
}

func TestLogin_UniformFailureResponse(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.createEmpresa(t, "Demo SA", "admin@demo.com")

	unknown := app.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "nadie@demo.com", "password": testPassword})
	wrongPw := app.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "admin@demo.com", "password": "Wrong123"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)

	// Identical bodies, so the response cannot reveal which emails
	// exist.
	assert.Equal(t, unknown.Body.String(), wrongPw.Body.String())
}

func TestRefresh_RotationAndReplay(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.createEmpresa(t, "Demo SA", "admin@demo.com")
	_, refresh := app.login(t, "admin@demo.com", testPassword)

	rec := app.do(t, http.MethodPost, "/api/v1/auth/refresh", "",
		map[string]string{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	var rotated struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decodeJSON(t, rec, &rotated)
	assert.NotEqual(t, refresh, rotated.RefreshToken)

	// The consumed token is dead.
	rec = app.do(t, http.MethodPost, "/api/v1/auth/refresh", "",
		map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The fresh access token works.
	rec = app.do(t, http.MethodGet, "/api/v1/auth/me", rotated.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout_AlwaysSucceeds(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.createEmpresa(t, "Demo SA", "admin@demo.com")
	_, refresh := app.login(t, "admin@demo.com", testPassword)

	rec := app.do(t, http.MethodPost, "/api/v1/auth/logout", "",
		map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Repeats and garbage still answer 200.
	rec = app.do(t, http.MethodPost, "/api/v1/auth/logout", "",
		map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodPost, "/api/v1/auth/logout", "",
		map[string]string{"refresh_token": "garbage"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// But the revoked token no longer refreshes.
	rec = app.do(t, http.MethodPost, "/api/v1/auth/refresh", "",
		map[string]string{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_RejectsMissingOrBadTokens(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResetEndpoints(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	// Unknown emails still get a 200 so the endpoint cannot be used to
	// probe accounts.
	rec := app.do(t, http.MethodPost, "/api/v1/auth/reset-request", "",
		map[string]string{"email": "nadie@demo.com"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/auth/reset", "",
		map[string]string{"token": "deadbeef", "password": "NewSecret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "token invalid")
}
