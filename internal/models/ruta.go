package models

import "time"

type Ruta struct {
	ID          int64     `json:"id"`
	Nombre      string    `json:"nombre"`
	Origen      string    `json:"origen"`
	Destino     string    `json:"destino"`
	DistanciaKm float64   `json:"distancia_km"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Ruta) AuditType() string { return "ruta" }
func (r *Ruta) AuditID() int64    { return r.ID }
