package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"media-notes/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateRequest validates both struct tags and domain rules
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return validationError(err, "request", "invalid JSON format")
	}
	return validateDomain(req)
}

// ValidateForm binds multipart or urlencoded form fields
func ValidateForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindWith(req, formBinding(c)); err != nil {
		return validationError(err, "form", "invalid form data")
	}
	return validateDomain(req)
}

// ValidateQuery validates query parameters
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		apiErr := validationError(err, "query", "invalid query parameters")
		apiErr.Kind = errors.KindBadRequest
		apiErr.Message = "Invalid query parameters"
		return apiErr
	}
	return validateDomain(req)
}

func formBinding(c *gin.Context) binding.Binding {
	if strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
		return binding.FormMultipart
	}
	return binding.Form
}

func validateDomain(req interface{}) error {
	if validator, ok := req.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validationError(err error, fallbackField, fallbackMessage string) *errors.APIError {
	validationErrors := make(map[string]string)

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrs {
			field := strings.ToLower(fieldError.Field())

			switch fieldError.Tag() {
			case "required":
				validationErrors[field] = "is required"
			case "email":
				validationErrors[field] = "must be a valid email"
			case "min":
				validationErrors[field] = "is too short"
			case "max":
				validationErrors[field] = "is too long"
			case "oneof":
				validationErrors[field] = "must be one of: " + fieldError.Param()
			default:
				validationErrors[field] = "is invalid"
			}
		}
	} else {
		validationErrors[fallbackField] = fallbackMessage
	}

	return errors.NewValidationError("Validation failed", validationErrors)
}
