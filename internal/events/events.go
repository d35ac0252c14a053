package events

import "context"

// Event types
const (
	EventSeguimientoCreated  = "seguimiento_created"
	EventPedidoEstadoChanged = "pedido_estado_changed"
	EventNotification        = "notification"
)

// Pub/sub channels
const (
	ChannelSeguimiento  = "events:seguimiento"
	ChannelPedido       = "events:pedido"
	ChannelNotificacion = "events:notificacion"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// Int64 reads a numeric payload field. JSON decoding turns numbers into
// float64, so both forms are accepted.
func (e Event) Int64(key string) (int64, bool) {
	switch v := e.Payload[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}
