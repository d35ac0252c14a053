package models

import "time"

type Vehiculo struct {
	ID          int64     `json:"id"`
	Placa       string    `json:"placa"`
	Marca       string    `json:"marca"`
	Modelo      string    `json:"modelo"`
	CapacidadKg float64   `json:"capacidad_kg"`
	ConductorID *int64    `json:"conductor_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (v *Vehiculo) AuditType() string { return "vehiculo" }
func (v *Vehiculo) AuditID() int64    { return v.ID }
