package models

import (
	"encoding/json"
	"time"
)

// AuditRecord is one captured state change. Rows are write-once.
type AuditRecord struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Action    string          `json:"action"`
	ModelType string          `json:"model_type"`
	ModelID   int64           `json:"model_id"`
	Changes   json.RawMessage `json:"changes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	User      *AuditUser      `json:"user"` // nil when the actor row no longer exists
}

// AuditUser is the actor identity joined onto an audit record.
type AuditUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
