package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/apierror"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/model"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/service"
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
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.Validation("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewFieldErrors(fields))
		return false
	}
	return true
}

// respondError maps domain errors onto the wire taxonomy. Anything not in
// the taxonomy is logged by the ErrorHandler middleware and surfaced as a
// generic 500 — storage errors never reach clients verbatim.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrRegisterAlreadyOpen), errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, apierror.Validation(err.Error()))
	case errors.Is(err, model.ErrRegisterAlreadyClosed), errors.Is(err, model.ErrRegisterClosed):
		c.JSON(http.StatusConflict, apierror.Conflict(err.Error()))
	case errors.Is(err, model.ErrRegisterNotFound), errors.Is(err, model.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, apierror.NotFound(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.Internal("erro interno do servidor"))
	}
}
