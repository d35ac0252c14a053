package models

import "time"

type Notificacion struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Titulo    string    `json:"titulo"`
	Mensaje   string    `json:"mensaje"`
	Leida     bool      `json:"leida"`
	CreatedAt time.Time `json:"created_at"`
}
