package notifier

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	subjectToken  = "Validación de Solicitud de Crédito UFPS"
	subjectStatus = "Estado de su Solicitud de Crédito UFPS"
)

var tokenTmpl = template.Must(template.New("token").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Validación de Solicitud de Crédito</h2>
  <p>Estimado/a <strong>{{.Name}}</strong>,</p>
  <p>Hemos recibido su solicitud de crédito con código: <strong style="color: #3498db;">{{.FilingCode}}</strong></p>
  <p>Para continuar con el proceso, valide su solicitud con el siguiente token:</p>
  <div style="background: #f8f9fa; padding: 20px; text-align: center; border: 2px dashed #3498db;">
    <h3 style="margin: 0; font-size: 24px;">{{.Token}}</h3>
  </div>
  <p style="color: #e74c3c; font-weight: bold;">Este token tiene una validez de {{.TTLMinutes}} minutos.</p>
  <p style="color: #7f8c8d; font-size: 14px;">Atentamente,<br><strong>Equipo de Créditos Financieros UFPS</strong></p>
</div>`))

var statusTmpl = template.Must(template.New("status").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Actualización de su Solicitud</h2>
  <p>Estimado/a <strong>{{.Name}}</strong>,</p>
  <p>Su solicitud <strong>{{.FilingCode}}</strong> ha sido <strong>{{.Label}}</strong>.</p>
  {{- if .Reason}}
  <p>Motivo: {{.Reason}}</p>
  {{- end}}
  <p style="color: #7f8c8d; font-size: 14px;">Atentamente,<br><strong>Equipo de Créditos Financieros UFPS</strong></p>
</div>`))

var stateLabels = map[string]string{
	"request":   "registrada",
	"validated": "validada",
	"approved":  "aprobada",
	"rejected":  "rechazada",
}

// Email is a rendered message ready for a transport.
type Email struct {
	To      string
	Subject string
	HTML    string
}

func renderToken(to, name, filingCode, token string, ttlMinutes int) (Email, error) {
	var buf bytes.Buffer
	err := tokenTmpl.Execute(&buf, map[string]any{
		"Name":       name,
		"FilingCode": filingCode,
		"Token":      token,
		"TTLMinutes": ttlMinutes,
	})
	if err != nil {
		return Email{}, fmt.Errorf("render token email: %w", err)
	}
	return Email{To: to, Subject: subjectToken, HTML: buf.String()}, nil
}

func renderStatus(to, name, filingCode, state, reason string) (Email, error) {
	label, ok := stateLabels[state]
	if !ok {
		label = state
	}
	var buf bytes.Buffer
	err := statusTmpl.Execute(&buf, map[string]any{
		"Name":       name,
		"FilingCode": filingCode,
		"Label":      label,
		"Reason":     reason,
	})
	if err != nil {
		return Email{}, fmt.Errorf("render status email: %w", err)
	}
	return Email{To: to, Subject: subjectStatus, HTML: buf.String()}, nil
}
