package handler

import (
	"errors"
	"net/http"

	"casitas/internal/apierror"
	"casitas/internal/dto"
	"casitas/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login de usuario
// @Description Emite un JWT. En el primer login de un residente crea su perfil.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrCredenciales) {
			c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
			return
		}
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
