package services

import (
	"testing"

	"github.com/Raraulo/AppMovilBack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegistrarUsuario_CreaCuentaConRolCliente(t *testing.T) {
	usuarios := &fakeUsuarios{}
	service := NewUsuarioService(usuarios, testLogger())

	usuario, err := service.Registrar(&models.RegistroUsuarioRequest{
		Email:    "Nuevo@Example.com",
		Nombre:   "Nuevo",
		Password: "clave-segura",
	})
	require.NoError(t, err)

	assert.NotZero(t, usuario.ID)
	assert.Equal(t, "nuevo@example.com", usuario.Email)
	assert.Equal(t, models.RolCliente, usuario.Rol)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(usuario.PasswordHash), []byte("clave-segura")))
}

func TestRegistrarUsuario_Validaciones(t *testing.T) {
	service := NewUsuarioService(&fakeUsuarios{}, testLogger())

	_, err := service.Registrar(&models.RegistroUsuarioRequest{Password: "clave-segura"})
	var faltante *models.CamposFaltantesError
	require.ErrorAs(t, err, &faltante)
	assert.Equal(t, "email", faltante.Campo)

	_, err = service.Registrar(&models.RegistroUsuarioRequest{
		Email:    "nuevo@example.com",
		Password: "corta",
	})
	assert.ErrorIs(t, err, models.ErrPasswordDebil)
}

func TestRegistrarUsuario_EmailDuplicado(t *testing.T) {
	usuarios := &fakeUsuarios{usuarios: map[int64]*models.Usuario{
		7: {ID: 7, Email: "ana@example.com"},
	}}
	service := NewUsuarioService(usuarios, testLogger())

	_, err := service.Registrar(&models.RegistroUsuarioRequest{
		Email:    "ana@example.com",
		Password: "clave-segura",
	})
	var conflicto *models.ConflictoClienteError
	require.ErrorAs(t, err, &conflicto)
	assert.Equal(t, "email", conflicto.Campo)
}
