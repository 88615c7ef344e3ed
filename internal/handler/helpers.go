package handler

import (
	"errors"
	"net/http"
	"reflect"

	"casitas/internal/apierror"
	"casitas/internal/middleware"
	"casitas/internal/model"
	"casitas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramID parses a UUID path parameter, writing 400 when malformed.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// responderError maps a service error to its HTTP status. Untyped errors are
// pushed to c.Errors so ErrorHandler logs them and answers a generic 500.
func responderError(c *gin.Context, err error) {
	var e *service.Error
	if !errors.As(err, &e) {
		_ = c.Error(err)
		return
	}
	body := apierror.ConCodigo(e.Kind.String(), e.Mensaje)
	switch e.Kind {
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, body)
	case service.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, body)
	case service.KindConflict:
		c.JSON(http.StatusConflict, body)
	case service.KindTransient:
		log.Warn().Err(e.Causa).Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).Msg("transient storage failure")
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, body)
	default:
		_ = c.Error(err)
	}
}

// actor is the authenticated user id recorded on audit entries.
func actor(c *gin.Context) *uuid.UUID {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.UsuarioID()
	}
	return nil
}

// residentePropio returns the caller's resident id when the caller is a
// resident; administrators get ok=false and act on any resident.
func residentePropio(c *gin.Context) (string, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.Rol != model.RolResidente {
		return "", false
	}
	if claims.ResidenteID == nil {
		return uuid.Nil.String(), true
	}
	return *claims.ResidenteID, true
}

// enAlcance reports whether the caller may act on an object of residenteID in
// condominioID: residents on their own objects, administrators inside their
// condominium, super administrators on anything.
func enAlcance(c *gin.Context, residenteID, condominioID string) bool {
	if propio, ok := residentePropio(c); ok && propio != residenteID {
		return false
	}
	if cond := condominioPropio(c); cond != "" && cond != condominioID {
		return false
	}
	return true
}

// noEncontrado answers 404 for objects outside the caller's scope, the same
// response a missing object gets.
func noEncontrado(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, apierror.ConCodigo(service.KindNotFound.String(), msg))
}

// condominioPropio is the caller's condominium for scoping list queries;
// empty for super administrators.
func condominioPropio(c *gin.Context) string {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.CondominioID == nil || claims.Rol == model.RolSuperAdministrador {
		return ""
	}
	return *claims.CondominioID
}
