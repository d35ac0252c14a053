package models

import "time"

// Pedido statuses
const (
	PedidoEstadoPendiente  = "pendiente"
	PedidoEstadoAsignado   = "asignado"
	PedidoEstadoEnTransito = "en_transito"
	PedidoEstadoEntregado  = "entregado"
	PedidoEstadoCancelado  = "cancelado"
)

// Valid state transitions: from -> []to
var ValidPedidoTransitions = map[string][]string{
	PedidoEstadoPendiente:  {PedidoEstadoAsignado, PedidoEstadoCancelado},
	PedidoEstadoAsignado:   {PedidoEstadoEnTransito, PedidoEstadoPendiente, PedidoEstadoCancelado},
	PedidoEstadoEnTransito: {PedidoEstadoEntregado, PedidoEstadoCancelado},
	PedidoEstadoEntregado:  {},
	PedidoEstadoCancelado:  {},
}

func IsValidPedidoTransition(from, to string) bool {
	allowed, ok := ValidPedidoTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

type Pedido struct {
	ID          int64     `json:"id"`
	ClienteID   int64     `json:"cliente_id"`
	Origen      string    `json:"origen"`
	Destino     string    `json:"destino"`
	Descripcion *string   `json:"descripcion,omitempty"`
	PesoKg      float64   `json:"peso_kg"`
	Estado      string    `json:"estado"`
	ConductorID *int64    `json:"conductor_id"`
	VehiculoID  *int64    `json:"vehiculo_id"`
	RutaID      *int64    `json:"ruta_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Pedido) AuditType() string { return "pedido" }
func (p *Pedido) AuditID() int64    { return p.ID }
