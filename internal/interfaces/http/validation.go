package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Reportar el nombre JSON (o query) del campo, no el de Go.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bindBody parsea el JSON y lo valida. Devuelve la respuesta 400 lista para enviar.
func bindBody(c *fiber.Ctx, out any) *dto.ErrorResponse {
	if err := c.BodyParser(out); err != nil {
		return &dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"}
	}
	return validateStruct(out)
}

// bindQuery igual que bindBody para los query params.
func bindQuery(c *fiber.Ctx, out any) *dto.ErrorResponse {
	if err := c.QueryParser(out); err != nil {
		return &dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"}
	}
	return validateStruct(out)
}

func validateStruct(out any) *dto.ErrorResponse {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	}
	resp := &dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	for _, fe := range verrs {
		resp.Fields = append(resp.Fields, dto.FieldError{Field: fieldPath(fe), Rule: fe.Tag()})
	}
	return resp
}

// fieldPath quita el nombre del struct raíz: "CheckoutRequest.lines[0].quantity" -> "lines[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
