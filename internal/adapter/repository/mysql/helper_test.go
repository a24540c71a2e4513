package mysql

import (
	"testing"
	"time"

	"creditos-backend/internal/domain/persona"
	"creditos-backend/internal/domain/solicitud"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the production schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func makePersona(doc, name string) *persona.Persona {
	return &persona.Persona{
		Document:  doc,
		Name:      name,
		Email:     doc + "@uni.edu",
		Phone:     "3001234567",
		BirthDate: time.Date(1998, 6, 15, 0, 0, 0, 0, time.UTC),
		Active:    true,
	}
}

func makeSolicitud(code, token string, applicant, cosigner uint64) *solicitud.Solicitud {
	return &solicitud.Solicitud{
		FilingCode:  code,
		ApplicantID: applicant,
		CosignerID:  cosigner,
		Amount:      1_000_000,
		Note:        "matricula",
		State:       solicitud.StateRequest,
		Token:       solicitud.NewToken(token, time.Now().UTC()),
	}
}

func seedPersons(t *testing.T, repo *PersonaRepository, docs ...string) []*persona.Persona {
	t.Helper()
	out := make([]*persona.Persona, 0, len(docs))
	for _, d := range docs {
		p := makePersona(d, "Persona "+d)
		if err := repo.Create(t.Context(), p); err != nil {
			t.Fatalf("seed persona %s: %v", d, err)
		}
		out = append(out, p)
	}
	return out
}
