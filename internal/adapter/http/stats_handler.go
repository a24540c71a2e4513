package http

import (
	"net/http"

	"creditos-backend/internal/usecase/stats"

	"github.com/labstack/echo/v4"
)

type StatsHandler struct{ uc *stats.Usecase }

func NewStatsHandler(uc *stats.Usecase) *StatsHandler { return &StatsHandler{uc: uc} }

func (h *StatsHandler) General(c echo.Context) error {
	dto, err := h.uc.General(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, dto, "")
}

func (h *StatsHandler) Persons(c echo.Context) error {
	dto, err := h.uc.Persons(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, dto, "")
}
