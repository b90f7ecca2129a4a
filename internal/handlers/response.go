package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/middleware"
)

func init() {
	// report json field names instead of Go struct field names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// responder writes the JSON envelope shared by every endpoint.
type responder struct {
	logger zerolog.Logger
}

func (r responder) ok(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindInventory:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail maps err to a status and envelope. Internal errors are logged and
// answered with a generic message.
func (r responder) fail(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperror.KindInternal {
		r.logger.Error().
			Err(err).
			Str("request_id", middleware.RequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong, please try again"})
		return
	}

	body := gin.H{"success": false, "message": appErr.Message}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	if appErr.Kind == apperror.KindInventory {
		body["available"] = appErr.Available
	}
	c.JSON(statusFor(appErr.Kind), body)
}

// bindError converts a binding failure into a field-identifying validation
// error.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.Validation(fe.Field(), fieldMessage(fe))
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperror.Validation("", "Request body is required")
	case errors.As(err, &typeErr):
		return apperror.Validation(typeErr.Field, fmt.Sprintf("%s has the wrong type", label(typeErr.Field)))
	case errors.As(err, &syntaxErr):
		return apperror.Validation("", "Request body is not valid JSON")
	}
	return apperror.Validation("", "Invalid request body")
}

func fieldMessage(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	default:
		return name + " is invalid"
	}
}

func label(field string) string {
	if field == "" {
		return "Field"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
