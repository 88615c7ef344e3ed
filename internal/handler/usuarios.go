package handler

import (
	"net/http"

	"casitas/internal/apierror"
	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/service"

	"github.com/gin-gonic/gin"
)

type UsuariosHandler struct{ svc service.AuthService }

func NewUsuariosHandler(svc service.AuthService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear usuario
// @Description  Un administrador solo crea usuarios de su condominio. Los residentes quedan con perfil creado.
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearUsuarioRequest true "Usuario"
// @Success      201  {object} dto.UsuarioResponse
// @Failure      403  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/usuarios [post]
func (h *UsuariosHandler) Crear(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if cond := condominioPropio(c); cond != "" {
		if req.Rol == model.RolSuperAdministrador {
			c.JSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		req.CondominioID = &cond
	}
	resp, err := h.svc.CrearUsuario(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar usuarios
// @Tags         usuarios
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.UsuarioResponse
// @Router       /v1/usuarios [get]
func (h *UsuariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarUsuarios(c.Request.Context(), condominioPropio(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
