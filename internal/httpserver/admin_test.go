package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEmpresa_SuperadminOnly(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.createEmpresa(t, "Demo SA", "admin@demo.com")

	// A tenant admin passes the admin group guard but not the extra
	// superadmin one on this route.
	access, _ := app.login(t, "admin@demo.com", testPassword)
	rec := app.do(t, http.MethodPost, "/api/v1/admin/empresas", access, map[string]string{
		"nombre":         "Otra SA",
		"admin_email":    "admin@otra.com",
		"admin_password": testPassword,
		"admin_nombre":   "Otro Admin",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateEmpresa_DuplicateAdminEmail(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.createEmpresa(t, "Demo SA", "admin@demo.com")

	access, _ := app.login(t, testSuperEmail, testPassword)
	rec := app.do(t, http.MethodPost, "/api/v1/admin/empresas", access, map[string]string{
		"nombre":         "Otra SA",
		"admin_email":    "admin@demo.com",
		"admin_password": testPassword,
		"admin_nombre":   "Otro Admin",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUsuarioLifecycle(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.createEmpresa(t, "Demo SA", "admin@demo.com")
	access, _ := app.login(t, "admin@demo.com", testPassword)

	rec := app.do(t, http.MethodPost, "/api/v1/admin/usuarios", access, map[string]string{
		"email":    "empleado@demo.com",
		"password": testPassword,
		"nombre":   "Emilia",
		"rol":      "empleado",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	decodeJSON(t, rec, &created)
	require.NotEmpty(t, created.ID)

	rec = app.do(t, http.MethodGet, "/api/v1/admin/usuarios", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var usuarios []struct {
		Email string `json:"email"`
	}
	decodeJSON(t, rec, &usuarios)
	assert.Len(t, usuarios, 2)

	rec = app.do(t, http.MethodPatch, "/api/v1/admin/usuarios/"+created.ID+"/desactivar", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	login := app.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "empleado@demo.com", "password": testPassword})
	assert.Equal(t, http.StatusUnauthorized, login.Code)

	rec = app.do(t, http.MethodDelete, "/api/v1/admin/usuarios/"+created.ID, access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodDelete, "/api/v1/admin/usuarios/"+created.ID, access, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes_EmpleadoForbidden(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.createEmpresa(t, "Demo SA", "admin@demo.com")
	access, _ := app.login(t, "admin@demo.com", testPassword)

	rec := app.do(t, http.MethodPost, "/api/v1/admin/usuarios", access, map[string]string{
		"email":    "empleado@demo.com",
		"password": testPassword,
		"nombre":   "Emilia",
		"rol":      "empleado",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	empleadoAccess, _ := app.login(t, "empleado@demo.com", testPassword)
	rec = app.do(t, http.MethodGet, "/api/v1/admin/usuarios", empleadoAccess, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The private group itself still serves them.
	rec = app.do(t, http.MethodGet, "/api/v1/auth/me", empleadoAccess, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSuperadmin_NeedsExplicitEmpresa(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	empresaID := app.createEmpresa(t, "Demo SA", "admin@demo.com")
	access, _ := app.login(t, testSuperEmail, testPassword)

	rec := app.do(t, http.MethodGet, "/api/v1/admin/usuarios", access, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/admin/usuarios?empresa_id="+empresaID, access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var usuarios []struct {
		Email string `json:"email"`
	}
	decodeJSON(t, rec, &usuarios)
	assert.Len(t, usuarios, 1)
}

func TestProductos_TenantIsolation(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.createEmpresa(t, "Empresa A", "admin@a.com")
	app.createEmpresa(t, "Empresa B", "admin@b.com")

	accessA, _ := app.login(t, "admin@a.com", testPassword)
	accessB, _ := app.login(t, "admin@b.com", testPassword)

	rec := app.do(t, http.MethodPost, "/api/v1/productos", accessA, map[string]any{
		"nombre": "Tornillos",
		"precio": 9.5,
		"stock":  100,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var listA []struct {
		Nombre string `json:"nombre"`
	}
	rec = app.do(t, http.MethodGet, "/api/v1/productos", accessA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &listA)
	require.Len(t, listA, 1)
	assert.Equal(t, "Tornillos", listA[0].Nombre)

	// The other tenant never sees it.
	var listB []struct {
		Nombre string `json:"nombre"`
	}
	rec = app.do(t, http.MethodGet, "/api/v1/productos", accessB, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &listB)
	assert.Empty(t, listB)
}

func TestProductos_SuperadminHasNoTenantStore(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	access, _ := app.login(t, testSuperEmail, testPassword)

	rec := app.do(t, http.MethodGet, "/api/v1/productos", access, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
