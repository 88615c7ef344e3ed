package handler

import (
	"net/http"

	"casitas/internal/dto"
	"casitas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RegistrosHandler struct{ svc service.AjusteService }

func NewRegistrosHandler(svc service.AjusteService) *RegistrosHandler {
	return &RegistrosHandler{svc: svc}
}

// Listar godoc
// @Summary      Listar registros de auditoría
// @Tags         registros
// @Produce      json
// @Security     BearerAuth
// @Param        tipo_evento   query string false "Tipo de evento"
// @Param        condominio_id query string false "Condominio"
// @Param        objeto_tipo   query string false "GASTO_COMUN | MULTA"
// @Param        objeto_id     query string false "UUID del objeto"
// @Success      200  {object} dto.RegistroListResponse
// @Router       /v1/registros [get]
func (h *RegistrosHandler) Listar(c *gin.Context) {
	var filter dto.RegistroFilter
	if !bindQuery(c, &filter) {
		return
	}
	if cond := condominioPropio(c); cond != "" {
		filter.CondominioID = cond
	}
	resp, err := h.svc.ListarRegistros(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener registro
// @Tags         registros
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del registro"
// @Success      200  {object} dto.RegistroResponse
// @Router       /v1/registros/{id} [get]
func (h *RegistrosHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, ok := h.cargar(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Revertir godoc
// @Summary      Revertir ajuste
// @Description  Revierte el ajuste registrado sobre el objeto que apunta. Cada ajuste se revierte a lo más una vez.
// @Tags         registros
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "UUID del registro de ajuste"
// @Param        body body dto.RevertirAjusteRequest true "Motivo"
// @Success      201  {object} dto.RegistroResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/registros/{id}/revertir [post]
func (h *RegistrosHandler) Revertir(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.RevertirAjusteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if _, ok := h.cargar(c, id); !ok {
		return
	}
	resp, err := h.svc.Revertir(c.Request.Context(), id, req.Motivo, actor(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// cargar fetches a record, hiding records of other condominiums. Registros are
// admin-only, so only the condominium is checked.
func (h *RegistrosHandler) cargar(c *gin.Context, id uuid.UUID) (*dto.RegistroResponse, bool) {
	resp, err := h.svc.ObtenerRegistro(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return nil, false
	}
	cond := condominioPropio(c)
	if cond != "" && (resp.CondominioID == nil || *resp.CondominioID != cond) {
		noEncontrado(c, "registro no encontrado")
		return nil, false
	}
	return resp, true
}
