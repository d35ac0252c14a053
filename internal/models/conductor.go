package models

import "time"

// Driver verification states
const (
	VerificacionPendiente  = "pendiente"
	VerificacionVerificado = "verificado"
	VerificacionRechazado  = "rechazado"
)

func IsValidVerificacion(estado string) bool {
	switch estado {
	case VerificacionPendiente, VerificacionVerificado, VerificacionRechazado:
		return true
	}
	return false
}

type Conductor struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Licencia           string    `json:"licencia"`
	Telefono           *string   `json:"telefono,omitempty"`
	EstadoVerificacion string    `json:"estado_verificacion"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (c *Conductor) AuditType() string { return "conductor" }
func (c *Conductor) AuditID() int64    { return c.ID }

// ConductorAsociacion links a driver to an association.
type ConductorAsociacion struct {
	ID           int64     `json:"id"`
	ConductorID  int64     `json:"conductor_id"`
	AsociacionID int64     `json:"asociacion_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (l *ConductorAsociacion) AuditType() string { return "conductor_asociacion" }
func (l *ConductorAsociacion) AuditID() int64    { return l.ID }
