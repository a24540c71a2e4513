package solicitud

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"creditos-backend/internal/adapter/repository/memory"
	"creditos-backend/internal/domain/apperr"
	"creditos-backend/internal/domain/persona"
	"creditos-backend/internal/domain/solicitud"
	"creditos-backend/internal/domain/uow"
	"creditos-backend/internal/testutil/notifiermock"
	"creditos-backend/internal/testutil/personamock"
	"creditos-backend/internal/testutil/solicitudmock"
	"creditos-backend/internal/testutil/uowmock"

	"gorm.io/gorm"
)

var (
	reToken  = regexp.MustCompile(`^[0-9A-F]{16}$`)
	reFiling = regexp.MustCompile(`^RAD-\d{8}-[0-9A-F]{8}$`)
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type fixture struct {
	uc    *Usecase
	store *memory.Store
	sink  *notifiermock.Sink
	clock *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	sink := &notifiermock.Sink{}
	clk := &clock{t: time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)}
	uc := NewUsecase(st.Personas(), st.Solicitudes(), st.UnitOfWork(), sink)
	uc.now = clk.now
	return &fixture{uc: uc, store: st, sink: sink, clock: clk}
}

func personA() persona.Input {
	return persona.Input{
		Document:  "1001",
		Name:      "Ana Gomez",
		Email:     "a@x.com",
		Phone:     "3001111111",
		BirthDate: time.Date(2000, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func personB() persona.Input {
	return persona.Input{
		Document:  "1002",
		Name:      "Bruno Diaz",
		Email:     "b@x.com",
		Phone:     "3002222222",
		BirthDate: time.Date(1975, 5, 2, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) create(t *testing.T, applicant, cosigner persona.Input) *CreateResult {
	t.Helper()
	res, err := f.uc.Create(context.Background(), CreateInput{Applicant: applicant, Cosigner: cosigner, Amount: 500_000, Note: "note"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return res
}

func (f *fixture) tokenOf(t *testing.T, requestID uint64) string {
	t.Helper()
	s, err := f.store.Solicitudes().GetByID(context.Background(), requestID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return s.Token.Value
}

func TestEndToEnd_RequestValidateApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.create(t, personA(), personB())
	if created.State != string(solicitud.StateRequest) {
		t.Fatalf("state = %s, want request", created.State)
	}
	if !reFiling.MatchString(created.FilingCode) {
		t.Fatalf("filing code %q has wrong format", created.FilingCode)
	}
	if created.Applicant.ID == created.Cosigner.ID {
		t.Fatalf("applicant and co-signer share id %d", created.Applicant.ID)
	}

	token := f.tokenOf(t, created.RequestID)
	if !reToken.MatchString(token) {
		t.Fatalf("token %q is not 16 uppercase hex chars", token)
	}
	msgs := f.sink.Messages()
	if len(msgs) != 1 || msgs[0].Kind != "token" || msgs[0].Token != token || msgs[0].Address != "a@x.com" {
		t.Fatalf("unexpected notifications: %+v", msgs)
	}

	v, err := f.uc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if v.State != string(solicitud.StateValidated) || v.RequestID != created.RequestID || !v.ValidatedAt.Equal(f.clock.t) {
		t.Fatalf("unexpected validation result: %+v", v)
	}
	applicant, _ := f.store.Personas().GetByID(ctx, created.Applicant.ID)
	if !applicant.EmailValidated {
		t.Fatalf("applicant email not marked validated")
	}

	approved, err := f.uc.SetState(ctx, created.RequestID, SetStateInput{State: "approved"})
	if err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if approved.State != string(solicitud.StateApproved) || approved.ApprovedAt == nil || approved.RejectedAt != nil {
		t.Fatalf("unexpected approved record: %+v", approved)
	}
	if approved.ValidatedAt == nil || !approved.TokenValidated {
		t.Fatalf("validation stamp lost: %+v", approved)
	}

	msgs = f.sink.Messages()
	if len(msgs) != 2 || msgs[1].Kind != "status" || msgs[1].State != "approved" {
		t.Fatalf("status notification missing: %+v", msgs)
	}
}

func TestCreate_SameApplicantAndCosigner(t *testing.T) {
	f := newFixture(t)
	cos := personB()
	cos.Document = "1001"

	_, err := f.uc.Create(context.Background(), CreateInput{Applicant: personA(), Cosigner: cos, Amount: 500_000})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if n, _ := f.store.Personas().CountActive(context.Background()); n != 0 {
		t.Fatalf("no person should be written, got %d", n)
	}
}

func TestCreate_InputBounds(t *testing.T) {
	f := newFixture(t)
	long := make([]byte, solicitud.MaxNoteLen+1)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"amount below minimum", CreateInput{Applicant: personA(), Cosigner: personB(), Amount: solicitud.MinAmount - 1}},
		{"amount above maximum", CreateInput{Applicant: personA(), Cosigner: personB(), Amount: solicitud.MaxAmount + 1}},
		{"note too long", CreateInput{Applicant: personA(), Cosigner: personB(), Amount: 500_000, Note: string(long)}},
		{"missing cosigner", CreateInput{Applicant: personA(), Amount: 500_000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.uc.Create(context.Background(), tt.in); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreate_PartyFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a, c *persona.Input)
		want   string
	}{
		{"future applicant birth date", func(a, _ *persona.Input) { a.BirthDate = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }, "applicant birth date must be in the past"},
		{"malformed co-signer email", func(_, c *persona.Input) { c.Email = "not-an-email" }, "co-signer email must be a valid address"},
		{"one-letter applicant name", func(a, _ *persona.Input) { a.Name = "A" }, "applicant name must be between 2 and 100 characters"},
		{"short co-signer phone", func(_, c *persona.Input) { c.Phone = "1" }, "co-signer phone must be between 7 and 15 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a, c := personA(), personB()
			tt.mutate(&a, &c)

			_, err := f.uc.Create(context.Background(), CreateInput{Applicant: a, Cosigner: c, Amount: 500_000})
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
			if err.Error() != tt.want {
				t.Fatalf("message = %q, want %q", err.Error(), tt.want)
			}
			if n, _ := f.store.Personas().CountActive(context.Background()); n != 0 {
				t.Fatalf("no person should be written, got %d", n)
			}
			if msgs := f.sink.Messages(); len(msgs) != 0 {
				t.Fatalf("no notification expected, got %+v", msgs)
			}
		})
	}
}

func TestValidateToken_ExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	issued := f.clock.t

	first := f.create(t, personA(), personB())
	c := personB()
	c.Document, c.Email, c.Phone = "1004", "d@x.com", "3004444444"
	a := personA()
	a.Document, a.Email, a.Phone = "1003", "c@x.com", "3003333333"
	second := f.create(t, a, c)

	f.clock.t = issued.Add(solicitud.TokenTTL - time.Second)
	if _, err := f.uc.ValidateToken(ctx, f.tokenOf(t, first.RequestID)); err != nil {
		t.Fatalf("validation at expiry-1s: %v", err)
	}

	f.clock.t = issued.Add(solicitud.TokenTTL + time.Second)
	if _, err := f.uc.ValidateToken(ctx, f.tokenOf(t, second.RequestID)); !errors.Is(err, apperr.ErrExpired) {
		t.Fatalf("validation at expiry+1s: want ErrExpired, got %v", err)
	}
	got, _ := f.store.Solicitudes().GetByID(ctx, second.RequestID)
	if got.Token.Validated || got.State != solicitud.StateRequest {
		t.Fatalf("expired token must not change the record: %+v", got)
	}
}

func TestValidateToken_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, personA(), personB())
	token := f.tokenOf(t, created.RequestID)

	if _, err := f.uc.ValidateToken(ctx, token); err != nil {
		t.Fatalf("first ValidateToken: %v", err)
	}
	if _, err := f.uc.ValidateToken(ctx, token); !errors.Is(err, apperr.ErrAlreadyValidated) {
		t.Fatalf("second ValidateToken: want ErrAlreadyValidated, got %v", err)
	}
}

func TestValidateToken_UnknownAndEmpty(t *testing.T) {
	f := newFixture(t)
	if _, err := f.uc.ValidateToken(context.Background(), "0000000000000000"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := f.uc.ValidateToken(context.Background(), "  "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestValidateToken_LosesRace(t *testing.T) {
	sols := &solicitudmock.Repo{
		GetByTokenFn: func(context.Context, string) (*solicitud.Solicitud, error) {
			return &solicitud.Solicitud{ID: 1, Token: solicitud.NewToken("ABCDEF0123456789", time.Now().UTC())}, nil
		},
		MarkValidatedFn: func(context.Context, uint64, time.Time) (bool, error) { return false, nil },
	}
	uc := NewUsecase(&personamock.Repo{}, sols, uowmock.New(), &notifiermock.Sink{})

	if _, err := uc.ValidateToken(context.Background(), "ABCDEF0123456789"); !errors.Is(err, apperr.ErrAlreadyValidated) {
		t.Fatalf("want ErrAlreadyValidated when CAS fails, got %v", err)
	}
}

func TestSetState_Rejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, personA(), personB())

	if _, err := f.uc.SetState(ctx, created.RequestID, SetStateInput{State: "rejected"}); !errors.Is(err, apperr.ErrMissingReason) {
		t.Fatalf("want ErrMissingReason, got %v", err)
	}
	if _, err := f.uc.SetState(ctx, created.RequestID, SetStateInput{State: "rejected", Reason: "   "}); !errors.Is(err, apperr.ErrMissingReason) {
		t.Fatalf("blank reason: want ErrMissingReason, got %v", err)
	}

	const reason = "Ingresos del codeudor insuficientes"
	got, err := f.uc.SetState(ctx, created.RequestID, SetStateInput{State: "rejected", Reason: reason})
	if err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if got.RejectedAt == nil || !got.RejectedAt.Equal(f.clock.t) || got.RejectionReason != reason {
		t.Fatalf("rejection not recorded: %+v", got)
	}
	msgs := f.sink.Messages()
	if last := msgs[len(msgs)-1]; last.Kind != "status" || last.Reason != reason {
		t.Fatalf("rejection notice missing: %+v", last)
	}
}

func TestSetState_StampsByTargetState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, personA(), personB())

	// request -> validated directly, without a token
	got, err := f.uc.SetState(ctx, created.RequestID, SetStateInput{State: "validated"})
	if err != nil {
		t.Fatalf("SetState validated: %v", err)
	}
	if got.ValidatedAt == nil || got.TokenValidated {
		t.Fatalf("validated stamp expected without touching the token: %+v", got)
	}
	if len(f.sink.Messages()) != 1 {
		t.Fatalf("validated must not notify")
	}
}

func TestSetState_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, personA(), personB())

	if _, err := f.uc.SetState(ctx, 999, SetStateInput{State: "approved"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown id: want ErrNotFound, got %v", err)
	}
	if _, err := f.uc.SetState(ctx, 999, SetStateInput{State: "bogus"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown id and state: want ErrNotFound, got %v", err)
	}
	if _, err := f.uc.SetState(ctx, created.RequestID, SetStateInput{State: "archived"}); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("bad state: want ErrInvalidState, got %v", err)
	}
}

func TestSetState_DeliveryFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, personA(), personB())

	f.sink.Err = errors.New("smtp: 421 service not available")
	if _, err := f.uc.SetState(ctx, created.RequestID, SetStateInput{State: "approved"}); !errors.Is(err, apperr.ErrDelivery) {
		t.Fatalf("want ErrDelivery, got %v", err)
	}
	got, _ := f.store.Solicitudes().GetByID(ctx, created.RequestID)
	if got.State != solicitud.StateApproved {
		t.Fatalf("state should stay committed, got %s", got.State)
	}
}

// rejectedApplicant runs A through request -> validated -> rejected so A
// exists with a validated email and only a rejected request.
func rejectedApplicant(t *testing.T, f *fixture) *CreateResult {
	t.Helper()
	ctx := context.Background()
	created := f.create(t, personA(), personB())
	if _, err := f.uc.ValidateToken(ctx, f.tokenOf(t, created.RequestID)); err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if _, err := f.uc.SetState(ctx, created.RequestID, SetStateInput{State: "rejected", Reason: "documentos incompletos"}); err != nil {
		t.Fatalf("SetState rejected: %v", err)
	}
	return created
}

func TestCreate_PriorRejectionStartsRejected(t *testing.T) {
	f := newFixture(t)
	first := rejectedApplicant(t, f)

	again := f.create(t, personA(), personB())
	if again.State != string(solicitud.StateRejected) {
		t.Fatalf("state = %s, want rejected", again.State)
	}
	if again.RequestID == first.RequestID || again.Applicant.ID != first.Applicant.ID {
		t.Fatalf("expected a new request for the same applicant: %+v", again)
	}
}

func TestCreate_ActiveRequestConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := personA().NewPersona()
	a.EmailValidated = true
	if err := f.store.Personas().Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	existing := &solicitud.Solicitud{
		FilingCode:  "RAD-20250901-00000001",
		ApplicantID: a.ID,
		CosignerID:  99,
		Amount:      200_000,
		State:       solicitud.StateRequest,
		Token:       solicitud.NewToken("AAAAAAAAAAAAAAAA", f.clock.t),
	}
	if err := f.store.Solicitudes().Create(ctx, existing); err != nil {
		t.Fatal(err)
	}

	_, err := f.uc.Create(ctx, CreateInput{Applicant: personA(), Cosigner: personB(), Amount: 500_000})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	all, _ := f.store.Solicitudes().FindByApplicant(ctx, a.ID)
	if len(all) != 1 {
		t.Fatalf("no new request should be created, got %d", len(all))
	}
}

func TestCreate_UnvalidatedReturningApplicant(t *testing.T) {
	f := newFixture(t)
	f.create(t, personA(), personB())

	// A exists now but never validated the token
	_, err := f.uc.Create(context.Background(), CreateInput{Applicant: personA(), Cosigner: personB(), Amount: 500_000})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestCreate_DeliveryFailureKeepsRecord(t *testing.T) {
	f := newFixture(t)
	f.sink.Err = errors.New("dial tcp: connection refused")

	_, err := f.uc.Create(context.Background(), CreateInput{Applicant: personA(), Cosigner: personB(), Amount: 500_000})
	if !errors.Is(err, apperr.ErrDelivery) {
		t.Fatalf("want ErrDelivery, got %v", err)
	}
	list, total, _ := f.store.Solicitudes().List(context.Background(), solicitud.ListFilter{})
	if total != 1 || list[0].State != solicitud.StateRequest {
		t.Fatalf("record should remain after delivery failure: total=%d", total)
	}
}

func TestCreate_UniqueIndexRaceIsConflict(t *testing.T) {
	applicant := &persona.Persona{ID: 1, Document: "1001", Email: "a@x.com", EmailValidated: true}
	cosigner := &persona.Persona{ID: 2, Document: "1002", Email: "b@x.com"}
	calls := 0

	personas := &personamock.Repo{
		GetByDocumentFn: func(_ context.Context, doc string) (*persona.Persona, error) {
			if doc == "1001" {
				return applicant, nil
			}
			return cosigner, nil
		},
	}
	sols := &solicitudmock.Repo{
		FindByApplicantFn: func(context.Context, uint64, ...solicitud.State) ([]solicitud.Solicitud, error) {
			calls++
			if calls == 3 {
				// re-check after the failed insert sees the winner
				return []solicitud.Solicitud{{ID: 10, State: solicitud.StateRequest}}, nil
			}
			return nil, nil
		},
		CreateFn: func(context.Context, *solicitud.Solicitud) error { return gorm.ErrDuplicatedKey },
	}
	uc := NewUsecase(personas, sols, uowmock.New(), &notifiermock.Sink{})

	_, err := uc.Create(context.Background(), CreateInput{Applicant: personA(), Cosigner: personB(), Amount: 500_000})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestCreate_FilingCodeCollisionSurfaces(t *testing.T) {
	personas := &personamock.Repo{
		GetByDocumentFn: func(context.Context, string) (*persona.Persona, error) { return nil, gorm.ErrRecordNotFound },
	}
	sols := &solicitudmock.Repo{
		FindByApplicantFn: func(context.Context, uint64, ...solicitud.State) ([]solicitud.Solicitud, error) { return nil, nil },
		CreateFn:          func(context.Context, *solicitud.Solicitud) error { return gorm.ErrDuplicatedKey },
	}
	uc := NewUsecase(personas, sols, uowmock.New(), &notifiermock.Sink{})

	_, err := uc.Create(context.Background(), CreateInput{Applicant: personA(), Cosigner: personB(), Amount: 500_000})
	if !errors.Is(err, gorm.ErrDuplicatedKey) || apperr.KindOf(err) != 0 {
		t.Fatalf("want raw ErrDuplicatedKey, got %v", err)
	}
}

func TestSetState_UsesLockedRow(t *testing.T) {
	locked := &solicitud.Solicitud{
		ID:          5,
		ApplicantID: 1,
		State:       solicitud.StateValidated,
		Applicant:   &persona.Persona{ID: 1, Email: "a@x.com", Name: "Ana"},
	}
	saved := false
	sols := &solicitudmock.Repo{
		SaveFn: func(_ context.Context, s *solicitud.Solicitud) error {
			saved = true
			if s != locked || s.State != solicitud.StateApproved {
				t.Fatalf("unexpected save: %+v", s)
			}
			return nil
		},
	}
	tx := uowmock.Passthrough(uow.Repos{Solicitudes: sols}, locked)
	sink := &notifiermock.Sink{}
	uc := NewUsecase(&personamock.Repo{}, sols, tx, sink)

	if _, err := uc.SetState(context.Background(), 5, SetStateInput{State: "approved"}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if !saved {
		t.Fatalf("Save not called inside the unit of work")
	}
	if msgs := sink.Messages(); len(msgs) != 1 || msgs[0].Address != "a@x.com" {
		t.Fatalf("unexpected notifications: %+v", msgs)
	}
}

func TestListAndPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, personA(), personB())

	page, err := f.uc.List(ctx, ListInput{State: "request"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Pagination.Total != 1 || page.Items[0].ID != created.RequestID || page.Items[0].Applicant == nil {
		t.Fatalf("unexpected page: %+v", page)
	}
	if _, err := f.uc.List(ctx, ListInput{State: "nope"}); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("want ErrInvalidState, got %v", err)
	}
	if _, err := f.uc.List(ctx, ListInput{SortBy: "token"}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("want ErrValidation for sort_by, got %v", err)
	}

	pending, err := f.uc.PendingValidations(ctx, 1, 10)
	if err != nil || pending.Pagination.Total != 1 {
		t.Fatalf("PendingValidations: %+v err=%v", pending, err)
	}

	f.clock.t = f.clock.t.Add(solicitud.TokenTTL + time.Minute)
	pending, _ = f.uc.PendingValidations(ctx, 1, 10)
	if pending.Pagination.Total != 0 {
		t.Fatalf("expired tokens are not pending, got %d", pending.Pagination.Total)
	}

	if _, err := f.uc.Get(ctx, 404); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Get unknown: want ErrNotFound, got %v", err)
	}
}
