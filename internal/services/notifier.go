package services

import (
	"context"

	"github.com/logistica/backend/internal/db"
	"github.com/logistica/backend/internal/events"
	"github.com/logistica/backend/internal/models"
	"go.uber.org/zap"
)

type NotificacionStore interface {
	Create(ctx context.Context, n *models.Notificacion) error
}

// Notifier stores a notification and pushes it to the user's sockets once the
// surrounding unit of work commits.
type Notifier struct {
	store     NotificacionStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewNotifier(store NotificacionStore, publisher events.Publisher, log *zap.Logger) *Notifier {
	return &Notifier{store: store, publisher: publisher, log: log}
}

func (n *Notifier) Notify(ctx context.Context, userID int64, titulo, mensaje string) error {
	notif := &models.Notificacion{UserID: userID, Titulo: titulo, Mensaje: mensaje}
	if err := n.store.Create(ctx, notif); err != nil {
		return storeError("create notificacion", err)
	}

	db.AfterCommit(ctx, func(ctx context.Context) {
		_ = n.publisher.Publish(context.WithoutCancel(ctx), events.ChannelNotificacion, events.Event{
			Type: events.EventNotification,
			Payload: map[string]any{
				"id":      notif.ID,
				"user_id": notif.UserID,
				"titulo":  notif.Titulo,
				"mensaje": notif.Mensaje,
			},
		})
	})
	return nil
}
