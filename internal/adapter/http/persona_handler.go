package http

import (
	"net/http"
	"strconv"
	"time"

	"creditos-backend/internal/domain/persona"
	personauc "creditos-backend/internal/usecase/persona"

	"github.com/labstack/echo/v4"
)

type PersonaHandler struct{ uc *personauc.Usecase }

func NewPersonaHandler(uc *personauc.Usecase) *PersonaHandler { return &PersonaHandler{uc: uc} }

type personaReq struct {
	Document  string `json:"document" validate:"required,docid"`
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email,max=120"`
	Phone     string `json:"phone" validate:"required,phone"`
	BirthDate string `json:"birth_date" validate:"required,past"`
}

// toInput assumes the request passed validation, so the date parses.
func (r personaReq) toInput() persona.Input {
	birth, _ := time.Parse(personauc.DateLayout, r.BirthDate)
	return persona.Input{
		Document:  r.Document,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		BirthDate: birth,
	}
}

type updatePersonaReq struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	BirthDate *string `json:"birth_date" validate:"omitempty,past"`
}

type listPersonasQuery struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Search string `query:"search"`
}

func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *PersonaHandler) Create(c echo.Context) error {
	var req personaReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, err)
	}
	dto, err := h.uc.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusCreated, dto, "persona registered")
}

func (h *PersonaHandler) Get(c echo.Context) error {
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

func (h *PersonaHandler) List(c echo.Context) error {
	var q listPersonasQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return fail(c, http.StatusBadRequest, "invalid query parameters")
	}
	page, err := h.uc.List(c.Request().Context(), personauc.ListInput{Page: q.Page, Limit: q.Limit, Search: q.Search})
	if err != nil {
		return failErr(c, err)
	}
	return respondPage(c, page.Items, page.Pagination)
}

func (h *PersonaHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, msgInvalidID)
	}
	var req updatePersonaReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, msgInvalidBody)
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, err)
	}
	in := personauc.UpdateInput{Name: req.Name, Phone: req.Phone}
	if req.BirthDate != nil {
		birth, _ := time.Parse(personauc.DateLayout, *req.BirthDate)
		in.BirthDate = &birth
	}
	dto, err := h.uc.Update(c.Request().Context(), id, in)
	if err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, dto, "persona updated")
}

func (h *PersonaHandler) Deactivate(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, msgInvalidID)
	}
	if err := h.uc.Deactivate(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return respond(c, http.StatusOK, nil, "persona deactivated")
}
