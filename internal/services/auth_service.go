package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/logistica/backend/internal/auth"
	"github.com/logistica/backend/internal/config"
	"github.com/logistica/backend/internal/models"
	"github.com/logistica/backend/internal/repositories"
	"go.uber.org/zap"
)

// AuthService registers and logs in users. Users are not audited.
type AuthService struct {
	users UserStore
	cfg   *config.Config
	log   *zap.Logger
}

func NewAuthService(users UserStore, cfg *config.Config, log *zap.Logger) *AuthService {
	return &AuthService{users: users, cfg: cfg, log: log}
}

// Register creates a cliente or conductor account. Emails listed in
// ADMIN_EMAILS are promoted to admin.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", validationError("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", validationError("invalid email")
	}
	if role == "" {
		role = models.RoleCliente
	}
	if role != models.RoleCliente && role != models.RoleConductor {
		return nil, "", validationError("role must be cliente or conductor")
	}
	if s.cfg.IsAdmin(email) {
		role = models.RoleAdmin
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", validationError("%s", err.Error())
	}

	u := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", storeError("create user", err)
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("role", u.Role))

	token, err := auth.GenerateJWT(s.cfg.JWTSecret, u.ID, u.Name, u.Role, s.cfg.JWTExpiration)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, "", auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", storeError("get user", err)
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, "", err
	}

	role := u.Role
	if s.cfg.IsAdmin(u.Email) {
		role = models.RoleAdmin
	}
	token, err := auth.GenerateJWT(s.cfg.JWTSecret, u.ID, u.Name, role, s.cfg.JWTExpiration)
	if err != nil {
		return nil, "", err
	}
	u.Role = role
	return u, token, nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError("get user", err)
	}
	if s.cfg.IsAdmin(u.Email) {
		u.Role = models.RoleAdmin
	}
	return u, nil
}
