package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/logistica/backend/internal/auth"
	"github.com/logistica/backend/internal/config"
	"github.com/logistica/backend/internal/events"
	"github.com/logistica/backend/internal/models"
	"go.uber.org/zap"
)

// wsClient serialises writes; websocket.Conn is not safe for concurrent
// writers and events arrive from several subscriptions at once.
type wsClient struct {
	conn *websocket.Conn
	role string
	mu   sync.Mutex
}

func (c *wsClient) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type WSHub struct {
	cfg         *config.Config
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[int64][]*wsClient
}

func NewWSHub(cfg *config.Config, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		cfg:         cfg,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[int64][]*wsClient),
	}
}

// Start subscribes the hub to every realtime channel. Tracking and estado
// events go to the pedido's cliente and to all connected admins;
// notifications go to their recipient only.
func (h *WSHub) Start(ctx context.Context) error {
	toClienteAndAdmins := func(event events.Event) {
		if clienteID, ok := event.Int64("cliente_id"); ok {
			h.SendToUser(clienteID, event)
		}
		h.SendToRole(models.RoleAdmin, event)
	}

	if err := h.subscriber.Subscribe(ctx, events.ChannelSeguimiento, toClienteAndAdmins); err != nil {
		return err
	}
	if err := h.subscriber.Subscribe(ctx, events.ChannelPedido, toClienteAndAdmins); err != nil {
		return err
	}
	return h.subscriber.Subscribe(ctx, events.ChannelNotificacion, func(event events.Event) {
		if userID, ok := event.Int64("user_id"); ok {
			h.SendToUser(userID, event)
		}
	})
}

func (h *WSHub) SendToUser(userID int64, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := append([]*wsClient(nil), h.connections[userID]...)
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			h.log.Debug("ws write failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
}

// SendToRole delivers event to every connection opened by a user with role.
func (h *WSHub) SendToRole(role string, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	var clients []*wsClient
	h.mu.RLock()
	for _, conns := range h.connections {
		for _, c := range conns {
			if c.role == role {
				clients = append(clients, c)
			}
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.send(data)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	claims, err := auth.ParseJWT(h.cfg.JWTSecret, tokenStr)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	userID := claims.UserID
	client := &wsClient{conn: conn, role: claims.Role}

	h.mu.Lock()
	h.connections[userID] = append(h.connections[userID], client)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		conns := h.connections[userID]
		for i, c := range conns {
			if c == client {
				h.connections[userID] = append(conns[:i], conns[i+1:]...)
				break
			}
		}
		if len(h.connections[userID]) == 0 {
			delete(h.connections, userID)
		}
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
