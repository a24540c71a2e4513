package http

import (
	"net/http"

	solicituduc "creditos-backend/internal/usecase/solicitud"

	"github.com/labstack/echo/v4"
)

type SolicitudHandler struct{ uc *solicituduc.Usecase }

func NewSolicitudHandler(uc *solicituduc.Usecase) *SolicitudHandler {
	return &SolicitudHandler{uc: uc}
}

// partyReq leaves field rules to the usecase, which reports
// which party is incomplete.
type partyReq struct {
	Document  string `json:"document" validate:"required"`
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email,max=120"`
	Phone     string `json:"phone" validate:"required,phone"`
	BirthDate string `json:"birth_date" validate:"required,past"`
}

func (r partyReq) toPersona() personaReq { return personaReq(r) }

type createSolicitudReq struct {
	Applicant partyReq `json:"applicant"`
	Cosigner  partyReq `json:"cosigner"`
	Amount    int64    `json:"amount" validate:"required"`
	Note      string   `json:"note"`
}

type setStateReq struct {
	State  string `json:"state" validate:"required"`
	Reason string `json:"reason"`
}

type listSolicitudesQuery struct {
	State     string `query:"state"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	SortBy    string `query:"sort_by"`
	SortOrder string `query:"sort_order"`
}

func (h *SolicitudHandler) Create(c echo.Context) error {
	var req createSolicitudReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, err)
	}
	res, err := h.uc.Create(c.Request().Context(), solicituduc.CreateInput{
		Applicant: req.Applicant.toPersona().toInput(),
		Cosigner:  req.Cosigner.toPersona().toInput(),
		Amount:    req.Amount,
		Note:      req.Note,
	})
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusCreated, res, "solicitud registered, check your email for the validation token")
}

func (h *SolicitudHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, msgInvalidID)
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, dto, "")
}

func (h *SolicitudHandler) List(c echo.Context) error {
	var q listSolicitudesQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return fail(c, http.StatusBadRequest, "invalid query parameters")
	}
	page, err := h.uc.List(c.Request().Context(), solicituduc.ListInput(q))
	if err != nil {
		return failErr(c, err)
	}
	return respondPage(c, page.Items, page.Pagination)
}

func (h *SolicitudHandler) SetState(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, msgInvalidID)
	}
	var req setStateReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, err)
	}
	dto, err := h.uc.SetState(c.Request().Context(), id, solicituduc.SetStateInput(req))
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, dto, "state updated")
}
