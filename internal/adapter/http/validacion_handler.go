package http

import (
	"net/http"

	solicituduc "creditos-backend/internal/usecase/solicitud"

	"github.com/labstack/echo/v4"
)

type ValidacionHandler struct{ uc *solicituduc.Usecase }

func NewValidacionHandler(uc *solicituduc.Usecase) *ValidacionHandler {
	return &ValidacionHandler{uc: uc}
}

type validateTokenReq struct {
	Token string `json:"token" validate:"required"`
}

type pageQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

func (h *ValidacionHandler) Validate(c echo.Context) error {
	var req validateTokenReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, err)
	}
	res, err := h.uc.ValidateToken(c.Request().Context(), req.Token)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, res, "token validated")
}

func (h *ValidacionHandler) Pending(c echo.Context) error {
	var q pageQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return fail(c, http.StatusBadRequest, "invalid query parameters")
	}
	page, err := h.uc.PendingValidations(c.Request().Context(), q.Page, q.Limit)
	if err != nil {
		return failErr(c, err)
	}
	return respondPage(c, page.Items, page.Pagination)
}
