package apierr

import (
	"errors"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3filter"
	govalidator "github.com/go-playground/validator/v10"

	"github.com/tuanvumaihuynh/autoparts-admin/pkg/ptr"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/validator"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/zerror"
)

// FieldError describes one invalid field of a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the error response for the API.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *[]FieldError `json:"details,omitempty"`

	// StatusCode is the status code for the error response.
	StatusCode int `json:"-"`
}

func New(err error) ErrorResponse {
	return errorToErrorResponse(err)
}

var InternalServerErr = ErrorResponse{
	Code:       "internalServerError",
	Message:    "an unknown error occurred",
	StatusCode: http.StatusInternalServerError,
}

func errorToErrorResponse(err error) ErrorResponse {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		return ErrorResponse{
			Code:       "validationError",
			Message:    reqErr.Error(),
			StatusCode: http.StatusBadRequest,
		}
	}

	var validationErrs govalidator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]FieldError, len(validationErrs))
		for i, fe := range validationErrs {
			details[i] = FieldError{
				Field:   fe.Field(),
				Message: validator.ValidationErrorMessage(fe),
			}
		}

		return ErrorResponse{
			Code:       "validationError",
			Message:    "validation error",
			Details:    ptr.New(details),
			StatusCode: http.StatusBadRequest,
		}
	}

	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return ErrorResponse{
			Code:       zErr.Code(),
			Message:    zErr.Msg(),
			StatusCode: ZErrorStatusToHTTPStatus(zErr.Status()),
		}
	}

	return InternalServerErr
}

func ZErrorStatusToHTTPStatus(status zerror.Status) int {
	switch status {
	case zerror.StatusUnauthorized:
		return http.StatusUnauthorized
	case zerror.StatusForbidden:
		return http.StatusForbidden
	case zerror.StatusNotFound:
		return http.StatusNotFound
	case zerror.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case zerror.StatusConflict:
		return http.StatusConflict
	case zerror.StatusTooManyRequests:
		return http.StatusTooManyRequests
	case zerror.StatusBadRequest:
		return http.StatusBadRequest
	case zerror.StatusValidationFailed:
		return http.StatusBadRequest
	case zerror.StatusUnknown, zerror.StatusInternalServerError:
		return http.StatusInternalServerError
	case zerror.StatusTimeout:
		return http.StatusGatewayTimeout
	case zerror.StatusNotImplemented:
		return http.StatusNotImplemented
	case zerror.StatusBadGateway:
		return http.StatusBadGateway
	case zerror.StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
