package config

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUDIT_DELIVERY", "")
	t.Setenv("AUDIT_QUERY_MAX_LIMIT", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	cfg := Load()
	if cfg.AuditDelivery != "stream" {
		t.Errorf("expected stream delivery by default, got %q", cfg.AuditDelivery)
	}
	if cfg.AuditQueryMaxLimit != 500 {
		t.Errorf("expected max limit 500, got %d", cfg.AuditQueryMaxLimit)
	}
	if cfg.JWTExpiration != 24*time.Hour {
		t.Errorf("expected 24h expiration, got %s", cfg.JWTExpiration)
	}
}

func TestLoad_ReadsEnv(t *testing.T) {
	t.Setenv("AUDIT_DELIVERY", "SYNC")
	t.Setenv("ADMIN_EMAILS", " ops@example.com, , Boss@Example.com ")
	t.Setenv("AUDIT_BUFFER_SIZE", "not-a-number")

	cfg := Load()
	if cfg.AuditDelivery != "sync" {
		t.Errorf("expected sync, got %q", cfg.AuditDelivery)
	}
	if len(cfg.AdminEmails) != 2 {
		t.Fatalf("expected 2 admin emails, got %v", cfg.AdminEmails)
	}
	if cfg.AuditBufferSize != 1024 {
		t.Errorf("invalid int should fall back, got %d", cfg.AuditBufferSize)
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminEmails: []string{"boss@example.com"}}

	tests := []struct {
		email string
		want  bool
	}{
		{"boss@example.com", true},
		{"  BOSS@example.com ", true},
		{"driver@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := cfg.IsAdmin(tt.email); got != tt.want {
			t.Errorf("IsAdmin(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestValidate_UnknownDeliveryFallsBack(t *testing.T) {
	cfg := &Config{AuditDelivery: "carrier-pigeon", JWTSecret: "s", AdminEmails: []string{"a@b.c"}}
	cfg.Validate(zap.NewNop())
	if cfg.AuditDelivery != "stream" {
		t.Errorf("expected fallback to stream, got %q", cfg.AuditDelivery)
	}
	if cfg.AuditBufferSize != 1024 {
		t.Errorf("expected buffer default, got %d", cfg.AuditBufferSize)
	}
}
