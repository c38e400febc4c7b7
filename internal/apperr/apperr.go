package apperr

import (
	"errors"
	"log"
	"net"
	"net/url"
	"strings"
	"time"
)

// Error kinds. Pages branch on these (notably PAYMENT_IN_PROGRESS, which
// reveals the cancel-and-retry affordance).
const (
	KindNetwork           = "NETWORK_ERROR"
	KindValidation        = "VALIDATION_ERROR"
	KindUnauthorized      = "UNAUTHORIZED"
	KindNotFound          = "NOT_FOUND"
	KindPaymentInProgress = "PAYMENT_IN_PROGRESS"
	KindRateLimit         = "RATE_LIMIT"
	KindServer            = "SERVER_ERROR"
	KindUnknown           = "UNKNOWN_ERROR"
)

// AppError is the normalized error every page-level action works with.
type AppError struct {
	Msg     string
	Code    string // one of the Kind constants, or an auth/ provider code
	Status  int
	Details any
}

func (e *AppError) Error() string { return e.Msg }

// HTTPError is the structured error the gateway client builds from a non-2xx
// response before normalization.
type HTTPError struct {
	Status  int
	Message string
	Data    any
}

func (e *HTTPError) Error() string { return e.Message }

// IdentityError carries an identity-provider error code (auth/ prefix).
type IdentityError struct {
	Code    string
	Message string
}

func (e *IdentityError) Error() string { return e.Message }

var authMessages = map[string]string{
	"auth/user-not-found":       "Usuario no encontrado",
	"auth/wrong-password":       "Contraseña incorrecta",
	"auth/email-already-in-use": "El email ya está en uso",
	"auth/weak-password":        "La contraseña es muy débil",
	"auth/invalid-email":        "Email inválido",
	"auth/too-many-requests":    "Demasiados intentos. Intenta más tarde",
}

// Normalize classifies any failure value into an AppError. Precedence:
// transport failure, HTTP status, identity-provider code, generic error,
// non-error value.
func Normalize(v any) *AppError {
	if appErr, ok := v.(*AppError); ok {
		return appErr
	}

	if err, ok := v.(error); ok {
		var appErr *AppError
		if errors.As(err, &appErr) {
			return appErr
		}

		if isTransportError(err) {
			return &AppError{
				Msg:    "Error de conexión. Por favor verifica tu conexión a internet.",
				Code:   KindNetwork,
				Status: 0,
			}
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return normalizeHTTP(httpErr)
		}

		var idErr *IdentityError
		if errors.As(err, &idErr) && strings.HasPrefix(idErr.Code, "auth/") {
			msg := authMessages[idErr.Code]
			if msg == "" {
				msg = idErr.Message
			}
			return &AppError{Msg: msg, Code: idErr.Code, Status: 400}
		}

		return &AppError{Msg: err.Error(), Code: KindUnknown}
	}

	if s, ok := v.(string); ok {
		return &AppError{Msg: s, Code: KindUnknown}
	}

	return &AppError{Msg: "Error desconocido", Code: KindUnknown}
}

func normalizeHTTP(err *HTTPError) *AppError {
	switch err.Status {
	case 400:
		return &AppError{
			Msg:     orDefault(err.Message, "Datos inválidos"),
			Code:    KindValidation,
			Status:  400,
			Details: err.Data,
		}
	case 401:
		return &AppError{
			Msg:    "No autorizado. Por favor inicia sesión.",
			Code:   KindUnauthorized,
			Status: 401,
		}
	case 404:
		return &AppError{
			Msg:    orDefault(err.Message, "Recurso no encontrado"),
			Code:   KindNotFound,
			Status: 404,
		}
	case 409:
		return &AppError{
			Msg:     orDefault(err.Message, "Ya existe un pago en proceso"),
			Code:    KindPaymentInProgress,
			Status:  409,
			Details: err.Data,
		}
	case 429:
		return &AppError{
			Msg:    "Demasiadas solicitudes. Por favor intenta más tarde.",
			Code:   KindRateLimit,
			Status: 429,
		}
	case 500, 502, 503:
		return &AppError{
			Msg:    "Error del servidor. Por favor intenta más tarde.",
			Code:   KindServer,
			Status: err.Status,
		}
	default:
		return &AppError{
			Msg:     orDefault(err.Message, "Error desconocido"),
			Code:    KindUnknown,
			Status:  err.Status,
			Details: err.Data,
		}
	}
}

func isTransportError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Message extracts a display string from any failure value.
func Message(v any) string {
	switch e := v.(type) {
	case *AppError:
		return e.Msg
	case error:
		var appErr *AppError
		if errors.As(e, &appErr) {
			return appErr.Msg
		}
		return e.Error()
	case string:
		return e
	default:
		return "Ha ocurrido un error inesperado"
	}
}

// LogError logs a failure with its context tag and classification fields.
func LogError(v any, context string) {
	if context == "" {
		context = "ERROR"
	}
	appErr := Normalize(v)
	log.Printf("[%s] message=%q code=%s status=%d timestamp=%s",
		context, appErr.Msg, appErr.Code, appErr.Status, time.Now().UTC().Format(time.RFC3339))
}
