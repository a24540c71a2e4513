package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"creditos-backend/internal/adapter/repository/memory"
	"creditos-backend/internal/testutil/notifiermock"
	personauc "creditos-backend/internal/usecase/persona"
	solicituduc "creditos-backend/internal/usecase/solicitud"
	"creditos-backend/internal/usecase/stats"

	"github.com/labstack/echo/v4"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// api is a fully routed echo over the in-memory store.
type api struct {
	e     *echo.Echo
	store *memory.Store
	sink  *notifiermock.Sink
}

func newAPI(t *testing.T) *api {
	t.Helper()
	st := memory.NewStore()
	sink := &notifiermock.Sink{}
	e := newEchoWithValidator()
	solUC := solicituduc.NewUsecase(st.Personas(), st.Solicitudes(), st.UnitOfWork(), sink)
	Register(e, Handlers{
		Health:      NewHandler(nil),
		Personas:    NewPersonaHandler(personauc.NewUsecase(st.Personas())),
		Solicitudes: NewSolicitudHandler(solUC),
		Validacion:  NewValidacionHandler(solUC),
		Stats:       NewStatsHandler(stats.NewUsecase(st.Personas(), st.Solicitudes())),
	})
	return &api{e: e, store: st, sink: sink}
}

func (a *api) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *stdhttp.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, strings.NewReader(b))
	default:
		req = httptest.NewRequest(method, path, mustJSON(b))
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// envelope decodes a success body, with data left raw for the caller.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Pagination *struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	} `json:"pagination"`
	Error   string       `json:"error"`
	Details []FieldError `json:"details"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("invalid data: %v; raw=%s", err, env.Data)
		}
	}
	return env
}

func party(doc, name, email, phone string) map[string]any {
	return map[string]any{
		"document":   doc,
		"name":       name,
		"email":      email,
		"phone":      phone,
		"birth_date": "1999-04-12",
	}
}
