package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wompi-harness/internal/apperr"
	"wompi-harness/internal/datagen"
	"wompi-harness/internal/dto"
	"wompi-harness/internal/identity"
	"wompi-harness/internal/nav"
)

type AuthHandler struct {
	sessions *identity.Manager
	gen      *datagen.Generator
}

func NewAuthHandler(sessions *identity.Manager, gen *datagen.Generator) *AuthHandler {
	return &AuthHandler{sessions: sessions, gen: gen}
}

// RegisterForm returns generated credentials to pre-fill the register form.
func (h *AuthHandler) RegisterForm(c echo.Context) error {
	userData := h.gen.UserData()
	return c.JSON(http.StatusOK, dto.RegisterSuggestion{
		Email:    userData.Email,
		Password: userData.Password,
	})
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Por favor completa todos los campos",
		})
	}
	if req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Las contraseñas no coinciden",
		})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "La contraseña debe tener al menos 6 caracteres",
		})
	}

	sess, err := h.sessions.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, dto.SessionResponse{
		UserID: sess.UserID,
		Email:  sess.Email,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	sess, err := h.sessions.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, dto.SessionResponse{
		UserID: sess.UserID,
		Email:  sess.Email,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.SignOut(c.Request().Context()); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, dto.RedirectResponse{Redirect: string(nav.RouteHome)})
}

// errorJSON renders any failure as the page-level alert payload. 409 carries
// the cancel-and-retry affordance flag.
func errorJSON(c echo.Context, err error) error {
	appErr := apperr.Normalize(err)

	status := appErr.Status
	switch {
	case status == 0 && appErr.Code == apperr.KindNetwork:
		status = http.StatusBadGateway
	case status < 400:
		status = http.StatusBadRequest
	}

	return c.JSON(status, dto.ErrorResponse{
		Error:     appErr.Msg,
		Code:      appErr.Code,
		Status:    appErr.Status,
		CanCancel: appErr.Code == apperr.KindPaymentInProgress,
	})
}
