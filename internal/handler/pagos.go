package handler

import (
	"crypto/subtle"
	"net/http"

	"casitas/internal/apierror"
	"casitas/internal/dto"
	"casitas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// WebhookSecretHeader carries the shared secret of the payment gateway.
const WebhookSecretHeader = "X-Webhook-Secret"

type PagosHandler struct {
	svc           service.PagoService
	webhookSecret string
}

func NewPagosHandler(svc service.PagoService, webhookSecret string) *PagosHandler {
	return &PagosHandler{svc: svc, webhookSecret: webhookSecret}
}

// Crear godoc
// @Summary      Registrar pago
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearPagoRequest true "Pago"
// @Success      201  {object} dto.PagoResponse
// @Router       /v1/pagos [post]
func (h *PagosHandler) Crear(c *gin.Context) {
	var req dto.CrearPagoRequest
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
// @Summary      Listar pagos
// @Tags         pagos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.PagoListResponse
// @Router       /v1/pagos [get]
func (h *PagosHandler) Listar(c *gin.Context) {
	var filter dto.PagoFilter
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
// @Summary      Obtener pago
// @Tags         pagos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del pago"
// @Success      200  {object} dto.PagoResponse
// @Router       /v1/pagos/{id} [get]
func (h *PagosHandler) Obtener(c *gin.Context) {
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
		noEncontrado(c, "pago no encontrado")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// enAlcance loads payment id and reports whether the caller may act on it.
func (h *PagosHandler) enAlcance(c *gin.Context, id uuid.UUID) bool {
	p, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return false
	}
	if !enAlcance(c, p.ResidenteID, p.CondominioID) {
		noEncontrado(c, "pago no encontrado")
		return false
	}
	return true
}

// Actualizar godoc
// @Summary      Actualizar pago pendiente
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "UUID del pago"
// @Param        body body dto.ActualizarPagoRequest true "Cambios"
// @Success      200  {object} dto.PagoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pagos/{id} [put]
func (h *PagosHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if !h.enAlcance(c, id) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar pago
// @Tags         pagos
// @Security     BearerAuth
// @Param        id path string true "UUID del pago"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pagos/{id} [delete]
func (h *PagosHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.enAlcance(c, id) {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Pendientes godoc
// @Summary      Pagos pendientes de un residente
// @Description  Crea los pagos faltantes para multas y reservas impagas y devuelve todos los pendientes.
// @Tags         pagos
// @Produce      json
// @Security     BearerAuth
// @Param        residente_id path string true "UUID del residente"
// @Success      200  {object} dto.SincronizarPendientesResponse
// @Router       /v1/pagos/pendientes/{residente_id} [get]
func (h *PagosHandler) Pendientes(c *gin.Context) {
	id, ok := paramID(c, "residente_id")
	if !ok {
		return
	}
	if propio, esResidente := residentePropio(c); esResidente && propio != id.String() {
		c.JSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
		return
	}
	resp, err := h.svc.SincronizarPendientes(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PrepararOrden godoc
// @Summary      Preparar orden de pago
// @Description  Asigna un buy order a un conjunto de pagos pendientes y devuelve el total a cobrar.
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.PrepararOrdenRequest true "Pagos"
// @Success      200  {object} dto.OrdenPagoResponse
// @Router       /v1/pagos/orden [post]
func (h *PagosHandler) PrepararOrden(c *gin.Context) {
	var req dto.PrepararOrdenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if id, ok := residentePropio(c); ok {
		req.ResidenteID = id
	}
	resp, err := h.svc.PrepararOrden(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirmacion godoc
// @Summary      Confirmación de la pasarela
// @Description  Webhook de la pasarela de pago. Autenticado con el secreto compartido en X-Webhook-Secret.
// @Tags         pagos
// @Accept       json
// @Produce      json
// @Param        body body dto.ConfirmacionPasarelaRequest true "Resultado de la transacción"
// @Success      200  {object} dto.ConfirmacionPasarelaResponse
// @Failure      401  {object} apierror.APIError
// @Router       /v1/pagos/confirmacion [post]
func (h *PagosHandler) Confirmacion(c *gin.Context) {
	got := c.GetHeader(WebhookSecretHeader)
	if h.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.webhookSecret)) != 1 {
		log.Warn().Str("ip", c.ClientIP()).Msg("pagos: webhook rejected")
		c.JSON(http.StatusUnauthorized, apierror.New("Firma de webhook invalida"))
		return
	}
	var req dto.ConfirmacionPasarelaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ConfirmarPasarela(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
