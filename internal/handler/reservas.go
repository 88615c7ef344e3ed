package handler

import (
	"net/http"

	"casitas/internal/dto"
	"casitas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReservasHandler struct{ svc service.ReservaService }

func NewReservasHandler(svc service.ReservaService) *ReservasHandler {
	return &ReservasHandler{svc: svc}
}

// Crear godoc
// @Summary      Reservar espacio común
// @Description  Calcula el costo, valida solapes y carga el monto al gasto común del mes en la misma transacción.
// @Tags         reservas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearReservaRequest true "Reserva"
// @Success      201  {object} dto.ReservaResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/reservas [post]
func (h *ReservasHandler) Crear(c *gin.Context) {
	var req dto.CrearReservaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if id, ok := residentePropio(c); ok {
		req.ResidenteID = id
	}
	resp, err := h.svc.Crear(c.Request.Context(), req, actor(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar reservas
// @Tags         reservas
// @Produce      json
// @Security     BearerAuth
// @Param        espacio_comun_id query string false "Espacio común"
// @Param        fecha            query string false "YYYY-MM-DD"
// @Param        estado           query string false "Estado"
// @Success      200  {object} dto.ReservaListResponse
// @Router       /v1/reservas [get]
func (h *ReservasHandler) Listar(c *gin.Context) {
	var filter dto.ReservaFilter
	if !bindQuery(c, &filter) {
		return
	}
	if id, ok := residentePropio(c); ok {
		filter.ResidenteID = id
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener reserva
// @Tags         reservas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la reserva"
// @Success      200  {object} dto.ReservaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/reservas/{id} [get]
func (h *ReservasHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	if !enAlcance(c, resp.ResidenteID, resp.CondominioID) {
		noEncontrado(c, "reserva no encontrada")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar godoc
// @Summary      Cancelar reserva
// @Description  Cancela la reserva y revierte su cargo en el gasto común.
// @Tags         reservas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "UUID de la reserva"
// @Param        body body dto.CancelarReservaRequest false "Motivo"
// @Success      200  {object} dto.ReservaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/reservas/{id}/cancelar [post]
func (h *ReservasHandler) Cancelar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarReservaRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	if !h.esPropia(c, id) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id, req, actor(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar reserva
// @Tags         reservas
// @Security     BearerAuth
// @Param        id path string true "UUID de la reserva"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/reservas/{id} [delete]
func (h *ReservasHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.esPropia(c, id) {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id, actor(c)); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// esPropia lets residents act only on their own bookings and administrators
// on their condominium's.
func (h *ReservasHandler) esPropia(c *gin.Context, id uuid.UUID) bool {
	r, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return false
	}
	if !enAlcance(c, r.ResidenteID, r.CondominioID) {
		noEncontrado(c, "reserva no encontrada")
		return false
	}
	return true
}
