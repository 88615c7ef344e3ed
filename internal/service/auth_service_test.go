package service_test

import (
	"context"
	"sync"
	"testing"

	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/repository"
	"casitas/internal/service"
	"casitas/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func nuevoAuth(db *gorm.DB) service.AuthService {
	cfg := testConfig()
	cfg.JWTSecret = "secreto-de-prueba"
	cfg.JWTExpirationHours = 1
	return service.NewAuthService(repository.NewUsuarioRepository(db), repository.NewResidenteRepository(db), cfg)
}

func crearUsuario(t *testing.T, svc service.AuthService, rol string) (*dto.UsuarioResponse, string) {
	t.Helper()
	condominio := uuid.NewString()
	vivienda := "B-12"
	email := uuid.NewString()[:8] + "@example.com"
	u, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email: email, Password: "clave-segura", Nombre: "Tomas", Apellido: "Pérez",
		Rol: rol, CondominioID: &condominio, ViviendaNumero: &vivienda,
	})
	require.NoError(t, err)
	return u, email
}

func TestAuth_LoginResidenteCreaPerfilUnaVez(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAuth(db)
	u, email := crearUsuario(t, svc, model.RolResidente)

	first, err := svc.Login(context.Background(), dto.LoginRequest{Email: email, Password: "clave-segura"})
	require.NoError(t, err)
	require.NotNil(t, first.User.ResidenteID)

	second, err := svc.Login(context.Background(), dto.LoginRequest{Email: email, Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, *first.User.ResidenteID, *second.User.ResidenteID)

	var perfiles []model.Residente
	require.NoError(t, db.Where("usuario_id = ?", u.ID).Find(&perfiles).Error)
	require.Len(t, perfiles, 1)
	assert.Equal(t, "B-12", perfiles[0].ViviendaNumero)
	assert.Equal(t, *u.CondominioID, perfiles[0].CondominioID.String())

	tok, err := jwt.Parse(first.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("secreto-de-prueba"), nil
	})
	require.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, u.ID, claims["user_id"])
	assert.Equal(t, model.RolResidente, claims["rol"])
	assert.Equal(t, *first.User.ResidenteID, claims["residente_id"])
}

func TestAuth_AsegurarPerfilConcurrente(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAuth(db)
	resp, _ := crearUsuario(t, svc, model.RolResidente)

	var u model.Usuario
	require.NoError(t, db.First(&u, "id = ?", resp.ID).Error)
	// users seeded before profiles were provisioned on creation have none
	require.NoError(t, db.Where("usuario_id = ?", u.ID).Delete(&model.Residente{}).Error)

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 4)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := svc.AsegurarPerfil(context.Background(), &u)
			if assert.NoError(t, err) {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
	var n int64
	require.NoError(t, db.Model(&model.Residente{}).Where("usuario_id = ?", u.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAuth_LoginAdministradorSinPerfil(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAuth(db)
	_, email := crearUsuario(t, svc, model.RolAdministrador)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: email, Password: "clave-segura"})
	require.NoError(t, err)
	assert.Nil(t, resp.User.ResidenteID)

	var n int64
	require.NoError(t, db.Model(&model.Residente{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAuth_CredencialesInvalidas(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAuth(db)
	_, email := crearUsuario(t, svc, model.RolAdministrador)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: email, Password: "otra-clave"})
	assert.ErrorIs(t, err, service.ErrCredenciales)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "nadie@example.com", Password: "clave-segura"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestAuth_CrearUsuarioDuplicado(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAuth(db)
	_, email := crearUsuario(t, svc, model.RolSuperAdministrador)

	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email: email, Password: "clave-segura", Nombre: "Otro", Rol: model.RolSuperAdministrador,
	})
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	_, err = svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email: "sin.condominio@example.com", Password: "clave-segura", Nombre: "Admin", Rol: model.RolAdministrador,
	})
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestAuth_CrearResidenteProvisionaPerfil(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAuth(db)
	u, _ := crearUsuario(t, svc, model.RolResidente)
	require.NotNil(t, u.ResidenteID)

	var perfil model.Residente
	require.NoError(t, db.First(&perfil, "id = ?", *u.ResidenteID).Error)
	assert.Equal(t, u.ID, perfil.UsuarioID.String())
	assert.True(t, perfil.Notificable())
}

func TestAuth_ListarUsuariosPorCondominio(t *testing.T) {
	db := testutil.NewDB(t)
	svc := nuevoAuth(db)
	a, _ := crearUsuario(t, svc, model.RolAdministrador)
	crearUsuario(t, svc, model.RolResidente)

	propios, err := svc.ListarUsuarios(context.Background(), *a.CondominioID)
	require.NoError(t, err)
	require.Len(t, propios, 1)
	assert.Equal(t, a.ID, propios[0].ID)

	todos, err := svc.ListarUsuarios(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	_, err = svc.ListarUsuarios(context.Background(), "no-es-uuid")
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}
