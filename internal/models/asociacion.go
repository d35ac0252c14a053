package models

import "time"

type Asociacion struct {
	ID          int64     `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a *Asociacion) AuditType() string { return "asociacion" }
func (a *Asociacion) AuditID() int64    { return a.ID }
