package mysql

import (
	"creditos-backend/internal/domain/persona"
	"creditos-backend/internal/domain/solicitud"

	"gorm.io/gorm"
)

// Migrate creates or updates the personas and solicitudes tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&persona.Persona{}, &solicitud.Solicitud{})
}
