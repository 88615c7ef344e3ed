package handler

import (
	"net/http"
	"time"

	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MultasHandler struct {
	svc       service.MultaService
	ajustes   service.AjusteService
	morosidad service.MorosidadService
}

func NewMultasHandler(svc service.MultaService, ajustes service.AjusteService, morosidad service.MorosidadService) *MultasHandler {
	return &MultasHandler{svc: svc, ajustes: ajustes, morosidad: morosidad}
}

// Crear godoc
// @Summary      Emitir multa
// @Description  Emite una multa manual; opcionalmente la carga al gasto común del mes.
// @Tags         multas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearMultaRequest true "Multa"
// @Success      201  {object} dto.MultaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/multas [post]
func (h *MultasHandler) Crear(c *gin.Context) {
	var req dto.CrearMultaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req, actor(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar multas
// @Tags         multas
// @Produce      json
// @Security     BearerAuth
// @Param        residente_id query string false "Residente"
// @Param        estado       query string false "PENDIENTE | PAGADA | CONDONADA"
// @Param        tipo         query string false "Tipo de multa"
// @Success      200  {object} dto.MultaListResponse
// @Router       /v1/multas [get]
func (h *MultasHandler) Listar(c *gin.Context) {
	var filter dto.MultaFilter
	if !bindQuery(c, &filter) {
		return
	}
	if id, ok := residentePropio(c); ok {
		filter.ResidenteID = id
	}
	if cond := condominioPropio(c); cond != "" {
		filter.CondominioID = cond
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener multa
// @Tags         multas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la multa"
// @Success      200  {object} dto.MultaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/multas/{id} [get]
func (h *MultasHandler) Obtener(c *gin.Context) {
	if resp, ok := h.cargar(c); ok {
		c.JSON(http.StatusOK, resp)
	}
}

func (h *MultasHandler) cargar(c *gin.Context) (*dto.MultaResponse, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return nil, false
	}
	if !enAlcance(c, resp.ResidenteID, resp.CondominioID) {
		noEncontrado(c, "multa no encontrada")
		return nil, false
	}
	return resp, true
}

// Ajustar godoc
// @Summary      Ajustar o condonar multa
// @Tags         multas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "UUID de la multa"
// @Param        body body dto.AjusteMontoRequest true "Nuevo monto"
// @Success      201  {object} dto.RegistroResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/multas/{id}/ajustes [post]
func (h *MultasHandler) Ajustar(c *gin.Context) {
	if _, ok := h.cargar(c); ok {
		ajustar(c, h.ajustes, model.ObjetoMulta)
	}
}

// RevertirAjuste godoc
// @Summary      Revertir ajuste de multa
// @Tags         multas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id          path string                    true "UUID de la multa"
// @Param        registro_id path string                    true "UUID del registro de ajuste"
// @Param        body        body dto.RevertirAjusteRequest true "Motivo"
// @Success      201  {object} dto.RegistroResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/multas/{id}/ajustes/{registro_id}/revertir [post]
func (h *MultasHandler) RevertirAjuste(c *gin.Context) {
	if _, ok := h.cargar(c); ok {
		revertirAjuste(c, h.ajustes, model.ObjetoMulta)
	}
}

// Historial godoc
// @Summary      Historial de ajustes de la multa
// @Tags         multas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la multa"
// @Success      200  {array}  dto.RegistroResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/multas/{id}/historial [get]
func (h *MultasHandler) Historial(c *gin.Context) {
	if m, ok := h.cargar(c); ok {
		historial(c, h.ajustes, model.ObjetoMulta, uuid.MustParse(m.ID))
	}
}

// ProcesarAtrasos godoc
// @Summary      Procesar atrasos
// @Description  Marca como vencidos los gastos comunes impagos y emite una multa por periodo. Idempotente.
// @Tags         multas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query string false "Fecha de referencia (YYYY-MM-DD), por defecto hoy"
// @Success      200  {object} dto.ProcesarAtrasosResponse
// @Failure      503  {object} apierror.APIError
// @Router       /v1/multas/procesar-atrasos [post]
func (h *MultasHandler) ProcesarAtrasos(c *gin.Context) {
	var req dto.ProcesarAtrasosRequest
	if !bindQuery(c, &req) {
		return
	}
	hoy := time.Now()
	if req.Fecha != nil {
		hoy, _ = time.Parse("2006-01-02", *req.Fecha)
	}
	resp, err := h.morosidad.ProcesarAtrasos(c.Request.Context(), hoy)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
