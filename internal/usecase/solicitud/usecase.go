package solicitud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"creditos-backend/internal/domain/apperr"
	"creditos-backend/internal/domain/notification"
	"creditos-backend/internal/domain/persona"
	"creditos-backend/internal/domain/solicitud"
	"creditos-backend/internal/domain/uow"
	personauc "creditos-backend/internal/usecase/persona"
	"creditos-backend/pkg/id"
	"creditos-backend/pkg/pagination"

	"gorm.io/gorm"
)

type Usecase struct {
	personas    persona.Repository
	solicitudes solicitud.Repository
	uow         uow.UnitOfWork
	sink        notification.Sink
	log         *slog.Logger

	now       func() time.Time
	newToken  func() string
	newFiling func(time.Time) string
}

func NewUsecase(personas persona.Repository, solicitudes solicitud.Repository, tx uow.UnitOfWork, sink notification.Sink) *Usecase {
	return &Usecase{
		personas:    personas,
		solicitudes: solicitudes,
		uow:         tx,
		sink:        sink,
		log:         slog.Default().With("component", "solicitud"),
		now:         func() time.Time { return time.Now().UTC() },
		newToken:    id.NewToken,
		newFiling:   id.NewFilingCode,
	}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	in.Applicant = in.Applicant.Normalize()
	in.Cosigner = in.Cosigner.Normalize()
	in.Note = strings.TrimSpace(in.Note)
	if err := checkCreateInput(in, u.now()); err != nil {
		return nil, err
	}

	existing, err := u.lookupPersona(ctx, in.Applicant.Document)
	if err != nil {
		return nil, err
	}
	var active []solicitud.Solicitud
	if existing != nil {
		if active, err = u.solicitudes.FindByApplicant(ctx, existing.ID, solicitud.StateRequest, solicitud.StateApproved); err != nil {
			return nil, err
		}
	}
	if err := CheckEligibility(in.Applicant, in.Cosigner, existing, active); err != nil {
		return nil, err
	}

	applicant := existing
	if applicant == nil {
		if applicant, err = u.createPersona(ctx, in.Applicant); err != nil {
			return nil, err
		}
	}
	cosigner, err := u.resolvePersona(ctx, in.Cosigner)
	if err != nil {
		return nil, err
	}

	history, err := u.solicitudes.FindByApplicant(ctx, applicant.ID)
	if err != nil {
		return nil, err
	}
	state, err := DetermineInitialState(history)
	if err != nil {
		return nil, err
	}

	now := u.now()
	s := &solicitud.Solicitud{
		FilingCode:  u.newFiling(now),
		ApplicantID: applicant.ID,
		CosignerID:  cosigner.ID,
		Amount:      in.Amount,
		Note:        in.Note,
		State:       state,
		Token:       solicitud.NewToken(u.newToken(), now),
		CreatedAt:   now,
	}
	if err := u.solicitudes.Create(ctx, s); err != nil {
		return nil, u.classifyCreateErr(ctx, applicant.ID, err)
	}

	if err := u.sink.SendToken(ctx, applicant.Email, applicant.Name, s.FilingCode, s.Token.Value); err != nil {
		u.log.WarnContext(ctx, "token delivery failed", "filing_code", s.FilingCode, "err", err)
		return nil, apperr.Delivery(err)
	}

	return &CreateResult{
		RequestID:  s.ID,
		FilingCode: s.FilingCode,
		State:      string(s.State),
		Applicant:  personauc.ToDTO(applicant, now),
		Cosigner:   personauc.ToDTO(cosigner, now),
		CreatedAt:  s.CreatedAt,
	}, nil
}

// checkCreateInput keeps the short documents accepted on this path;
// every other party field follows the persona rules.
func checkCreateInput(in CreateInput, now time.Time) error {
	parties := []struct {
		role string
		p    persona.Input
	}{{"applicant", in.Applicant}, {"co-signer", in.Cosigner}}
	for _, party := range parties {
		p := party.p
		if p.Document == "" || p.Name == "" || p.Email == "" || p.Phone == "" || p.BirthDate.IsZero() {
			return apperr.Validation(party.role + " document, name, email, phone and birth date are required")
		}
		if errs := personauc.ContactErrors(p, now); len(errs) > 0 {
			return apperr.Validation(party.role + " " + strings.Join(errs, ", "))
		}
	}
	if in.Amount < solicitud.MinAmount || in.Amount > solicitud.MaxAmount {
		return apperr.Validation(fmt.Sprintf("amount must be between %d and %d", solicitud.MinAmount, solicitud.MaxAmount))
	}
	if utf8.RuneCountInString(in.Note) > solicitud.MaxNoteLen {
		return apperr.Validation(fmt.Sprintf("note must be at most %d characters", solicitud.MaxNoteLen))
	}
	return nil
}

// lookupPersona returns nil, nil when no person has the document.
func (u *Usecase) lookupPersona(ctx context.Context, document string) (*persona.Persona, error) {
	p, err := u.personas.GetByDocument(ctx, document)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, err
	}
}

func (u *Usecase) resolvePersona(ctx context.Context, in persona.Input) (*persona.Persona, error) {
	p, err := u.lookupPersona(ctx, in.Document)
	if err != nil || p != nil {
		return p, err
	}
	return u.createPersona(ctx, in)
}

func (u *Usecase) createPersona(ctx context.Context, in persona.Input) (*persona.Persona, error) {
	p := in.NewPersona()
	if err := u.personas.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation("a person with document " + in.Document + " or email " + in.Email + " already exists")
		}
		return nil, err
	}
	return p, nil
}

// classifyCreateErr turns a unique-index violation into a Conflict when the
// applicant has gained an active request since the eligibility check.
func (u *Usecase) classifyCreateErr(ctx context.Context, applicantID uint64, err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	active, ferr := u.solicitudes.FindByApplicant(ctx, applicantID, solicitud.StateRequest, solicitud.StateApproved)
	if ferr == nil && len(active) > 0 {
		return apperr.Conflict(msgActiveExists)
	}
	return fmt.Errorf("create solicitud: %w", err)
}

func (u *Usecase) ValidateToken(ctx context.Context, token string) (*ValidationResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Validation("token is required")
	}

	s, err := u.solicitudes.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("token not found")
		}
		return nil, err
	}
	if s.Token.Validated {
		return nil, apperr.AlreadyValidated()
	}
	now := u.now()
	if s.Token.Expired(now) {
		return nil, apperr.Expired()
	}

	ok, err := u.solicitudes.MarkValidated(ctx, s.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.AlreadyValidated()
	}
	u.markEmailValidated(ctx, s)

	return &ValidationResult{
		RequestID:   s.ID,
		FilingCode:  s.FilingCode,
		State:       string(solicitud.StateValidated),
		ValidatedAt: now,
	}, nil
}

// markEmailValidated records that the applicant proved control of the
// address. Failures are logged; the token is already consumed.
func (u *Usecase) markEmailValidated(ctx context.Context, s *solicitud.Solicitud) {
	p := s.Applicant
	if p == nil {
		var err error
		if p, err = u.personas.GetByID(ctx, s.ApplicantID); err != nil {
			u.log.WarnContext(ctx, "load applicant after validation", "applicant_id", s.ApplicantID, "err", err)
			return
		}
	}
	if p.EmailValidated {
		return
	}
	p.EmailValidated = true
	if err := u.personas.Save(ctx, p); err != nil {
		u.log.WarnContext(ctx, "mark email validated", "applicant_id", p.ID, "err", err)
	}
}

// SetState sets any of the four states; there is no transition table. The
// matching timestamp is stamped whatever the prior state was.
func (u *Usecase) SetState(ctx context.Context, requestID uint64, in SetStateInput) (*SolicitudDTO, error) {
	reason := strings.TrimSpace(in.Reason)
	now := u.now()

	var out *solicitud.Solicitud
	err := u.uow.WithinSolicitudTx(ctx, requestID, func(r uow.Repos, s *solicitud.Solicitud) error {
		st, ok := solicitud.ParseState(in.State)
		if !ok {
			return apperr.InvalidState(fmt.Sprintf("state %q is not one of request, validated, approved, rejected", in.State))
		}
		if st == solicitud.StateRejected && reason == "" {
			return apperr.MissingReason()
		}
		if utf8.RuneCountInString(reason) > solicitud.MaxReasonLen {
			return apperr.Validation(fmt.Sprintf("rejection reason must be at most %d characters", solicitud.MaxReasonLen))
		}

		s.ApplyState(st, reason, now)
		if err := r.Solicitudes.Save(ctx, s); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict(msgActiveExists)
			}
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("solicitud not found")
		}
		return nil, err
	}

	if out.State == solicitud.StateApproved || out.State == solicitud.StateRejected {
		if err := u.notifyStatus(ctx, out); err != nil {
			u.log.WarnContext(ctx, "status delivery failed", "filing_code", out.FilingCode, "state", out.State, "err", err)
			return nil, apperr.Delivery(err)
		}
	}

	dto := toDTO(out, now)
	return &dto, nil
}

func (u *Usecase) notifyStatus(ctx context.Context, s *solicitud.Solicitud) error {
	p := s.Applicant
	if p == nil {
		var err error
		if p, err = u.personas.GetByID(ctx, s.ApplicantID); err != nil {
			return err
		}
	}
	return u.sink.SendStatus(ctx, p.Email, p.Name, s.FilingCode, string(s.State), s.RejectionReason)
}

func (u *Usecase) Get(ctx context.Context, requestID uint64) (*SolicitudDTO, error) {
	s, err := u.solicitudes.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("solicitud not found")
		}
		return nil, err
	}
	dto := toDTO(s, u.now())
	return &dto, nil
}

func (u *Usecase) List(ctx context.Context, in ListInput) (*SolicitudPage, error) {
	f := solicitud.ListFilter{SortBy: in.SortBy, Desc: !strings.EqualFold(in.SortOrder, "asc")}
	if in.State != "" {
		st, ok := solicitud.ParseState(in.State)
		if !ok {
			return nil, apperr.InvalidState(fmt.Sprintf("state %q is not one of request, validated, approved, rejected", in.State))
		}
		f.State = st
	}
	switch f.SortBy {
	case "", "created_at", "amount", "state", "filing_code":
	default:
		return nil, apperr.Validation("sort_by must be one of created_at, amount, state, filing_code")
	}

	pg := pagination.New(in.Page, in.Limit)
	f.Offset, f.Limit = pg.Offset(), pg.Limit
	list, total, err := u.solicitudes.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return toPage(list, total, pg, u.now()), nil
}

// PendingValidations lists requests whose token is unvalidated and not yet
// expired, soonest expiry first.
func (u *Usecase) PendingValidations(ctx context.Context, page, limit int) (*SolicitudPage, error) {
	pg := pagination.New(page, limit)
	now := u.now()
	list, total, err := u.solicitudes.ListPendingValidation(ctx, now, pg.Offset(), pg.Limit)
	if err != nil {
		return nil, err
	}
	return toPage(list, total, pg, now), nil
}
