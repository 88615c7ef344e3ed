package handler

import (
	"net/http"

	"casitas/internal/apierror"
	"casitas/internal/dto"
	"casitas/internal/service"

	"github.com/gin-gonic/gin"
)

type EspaciosHandler struct{ svc service.EspacioService }

func NewEspaciosHandler(svc service.EspacioService) *EspaciosHandler {
	return &EspaciosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear espacio común
// @Tags         espacios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearEspacioRequest true "Espacio"
// @Success      201  {object} dto.EspacioResponse
// @Router       /v1/espacios-comunes [post]
func (h *EspaciosHandler) Crear(c *gin.Context) {
	var req dto.CrearEspacioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	// administrators create spaces in their own condominium only
	if cond := condominioPropio(c); cond != "" {
		req.CondominioID = cond
	}
	if !validar(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar espacios comunes activos
// @Tags         espacios
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.EspacioResponse
// @Router       /v1/espacios-comunes [get]
func (h *EspaciosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), condominioPropio(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
