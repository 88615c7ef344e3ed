package handler

import (
	"net/http"

	"casitas/internal/dto"
	"casitas/internal/model"
	"casitas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GastosHandler struct {
	svc     service.GastoComunService
	ajustes service.AjusteService
}

func NewGastosHandler(svc service.GastoComunService, ajustes service.AjusteService) *GastosHandler {
	return &GastosHandler{svc: svc, ajustes: ajustes}
}

// Crear godoc
// @Summary      Crear gasto común
// @Description  Crea el gasto común de un residente para un periodo. El total se calcula desde los componentes.
// @Tags         gastos-comunes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearGastoComunRequest true "Gasto común"
// @Success      201  {object} dto.GastoComunResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/gastos-comunes [post]
func (h *GastosHandler) Crear(c *gin.Context) {
	var req dto.CrearGastoComunRequest
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
// @Summary      Listar gastos comunes
// @Tags         gastos-comunes
// @Produce      json
// @Security     BearerAuth
// @Param        residente_id query string false "Residente"
// @Param        estado       query string false "PENDIENTE | PAGADO | VENCIDO | MOROSO"
// @Param        mes          query int    false "Mes"
// @Param        anio         query int    false "Año"
// @Success      200  {object} dto.GastoComunListResponse
// @Router       /v1/gastos-comunes [get]
func (h *GastosHandler) Listar(c *gin.Context) {
	var filter dto.GastoComunFilter
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
// @Summary      Obtener gasto común
// @Tags         gastos-comunes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del gasto común"
// @Success      200  {object} dto.GastoComunResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/gastos-comunes/{id} [get]
func (h *GastosHandler) Obtener(c *gin.Context) {
	if resp, ok := h.cargar(c); ok {
		c.JSON(http.StatusOK, resp)
	}
}

// cargar fetches the :id entry, answering 404 when it is missing or outside
// the caller's scope.
func (h *GastosHandler) cargar(c *gin.Context) (*dto.GastoComunResponse, bool) {
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
		noEncontrado(c, "gasto común no encontrado")
		return nil, false
	}
	return resp, true
}

// Notificar godoc
// @Summary      Enviar estado de cuenta
// @Description  Genera el PDF del gasto común y lo envía por correo al residente.
// @Tags         gastos-comunes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del gasto común"
// @Success      200  {object} dto.NotificacionResponse
// @Router       /v1/gastos-comunes/{id}/notificar [post]
func (h *GastosHandler) Notificar(c *gin.Context) {
	g, ok := h.cargar(c)
	if !ok {
		return
	}
	resp, err := h.svc.Notificar(c.Request.Context(), uuid.MustParse(g.ID))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ajustar godoc
// @Summary      Ajustar monto del gasto común
// @Description  Cambia el total moviendo el monto base y deja un registro de auditoría revertible.
// @Tags         gastos-comunes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "UUID del gasto común"
// @Param        body body dto.AjusteMontoRequest true "Nuevo monto"
// @Success      201  {object} dto.RegistroResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/gastos-comunes/{id}/ajustes [post]
func (h *GastosHandler) Ajustar(c *gin.Context) {
	if _, ok := h.cargar(c); ok {
		ajustar(c, h.ajustes, model.ObjetoGastoComun)
	}
}

// RevertirAjuste godoc
// @Summary      Revertir ajuste del gasto común
// @Tags         gastos-comunes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id          path string                     true "UUID del gasto común"
// @Param        registro_id path string                     true "UUID del registro de ajuste"
// @Param        body        body dto.RevertirAjusteRequest  true "Motivo"
// @Success      201  {object} dto.RegistroResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/gastos-comunes/{id}/ajustes/{registro_id}/revertir [post]
func (h *GastosHandler) RevertirAjuste(c *gin.Context) {
	if _, ok := h.cargar(c); ok {
		revertirAjuste(c, h.ajustes, model.ObjetoGastoComun)
	}
}

// Historial godoc
// @Summary      Historial de ajustes del gasto común
// @Description  Registros de ajuste y reversión del gasto común en orden de creación.
// @Tags         gastos-comunes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del gasto común"
// @Success      200  {array}  dto.RegistroResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/gastos-comunes/{id}/historial [get]
func (h *GastosHandler) Historial(c *gin.Context) {
	if g, ok := h.cargar(c); ok {
		historial(c, h.ajustes, model.ObjetoGastoComun, uuid.MustParse(g.ID))
	}
}

// ajustar and revertirAjuste are shared by the ledger and fine routes.
func ajustar(c *gin.Context, svc service.AjusteService, objetoTipo string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AjusteMontoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := svc.Ajustar(c.Request.Context(), service.SolicitudAjuste{
		ObjetoTipo:    objetoTipo,
		ObjetoID:      id,
		MontoNuevo:    req.MontoNuevo,
		Motivo:        req.Motivo,
		ActorID:       actor(c),
		EsCondonacion: req.EsCondonacion,
	})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func historial(c *gin.Context, svc service.AjusteService, objetoTipo string, id uuid.UUID) {
	resp, err := svc.Historial(c.Request.Context(), objetoTipo, id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func revertirAjuste(c *gin.Context, svc service.AjusteService, objetoTipo string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	registroID, ok := paramID(c, "registro_id")
	if !ok {
		return
	}
	var req dto.RevertirAjusteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := svc.RevertirObjetivo(c.Request.Context(), objetoTipo, id, registroID, req.Motivo, actor(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
