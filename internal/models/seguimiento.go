package models

import "time"

// Seguimiento is one GPS position reported by a driver for an order.
type Seguimiento struct {
	ID          int64     `json:"id"`
	PedidoID    int64     `json:"pedido_id"`
	ConductorID int64     `json:"conductor_id"`
	Latitud     float64   `json:"latitud"`
	Longitud    float64   `json:"longitud"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Seguimiento) AuditType() string { return "seguimiento" }
func (s *Seguimiento) AuditID() int64    { return s.ID }

func IsValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
