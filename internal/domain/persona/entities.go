package persona

import (
	"strings"
	"time"
)

type Persona struct {
	ID             uint64    `gorm:"primaryKey;column:id" json:"id"`
	Document       string    `gorm:"column:document;size:20;not null;uniqueIndex:ux_personas_document" json:"document"`
	Name           string    `gorm:"column:name;size:100;not null" json:"name"`
	Email          string    `gorm:"column:email;size:120;not null;uniqueIndex:ux_personas_email" json:"email"`
	Phone          string    `gorm:"column:phone;size:15;not null" json:"phone"`
	BirthDate      time.Time `gorm:"column:birth_date;type:date;not null" json:"birth_date"`
	EmailValidated bool      `gorm:"column:email_validated;not null;default:false" json:"email_validated"`
	Active         bool      `gorm:"column:active;not null;default:true;index" json:"active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Persona) TableName() string { return "personas" }

// Age in whole years at now.
func (p *Persona) Age(now time.Time) int {
	age := now.Year() - p.BirthDate.Year()
	if now.Month() < p.BirthDate.Month() ||
		(now.Month() == p.BirthDate.Month() && now.Day() < p.BirthDate.Day()) {
		age--
	}
	return age
}

// Input is caller-supplied person data that has not been stored yet.
type Input struct {
	Document  string
	Name      string
	Email     string
	Phone     string
	BirthDate time.Time
}

// Normalize trims every field and lowercases the email.
func (in Input) Normalize() Input {
	in.Document = strings.TrimSpace(in.Document)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

func (in Input) NewPersona() *Persona {
	return &Persona{
		Document:  in.Document,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		BirthDate: in.BirthDate,
		Active:    true,
	}
}
