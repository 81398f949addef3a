package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/repository"
)

// UserService covers account changes outside of signup and login.
type UserService struct {
	users *repository.UserRepository
	log   *logger.Logger
}

func NewUserService(users *repository.UserRepository, log *logger.Logger) *UserService {
	return &UserService{users: users, log: log.With("service", "UserService")}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

// LinkTelegram attaches a Telegram chat to the user; chat id 0 unlinks it.
func (s *UserService) LinkTelegram(ctx context.Context, id uuid.UUID, chatID int64) (*model.User, error) {
	var link *int64
	if chatID != 0 {
		link = &chatID
	}
	if err := s.users.SetTelegramChatID(ctx, id, link); err != nil {
		return nil, err
	}
	s.log.Info("telegram link changed", "user_id", id.String(), "linked", link != nil)
	return s.users.FindByID(ctx, id)
}

// FindByTelegram resolves the account linked to a chat.
func (s *UserService) FindByTelegram(ctx context.Context, chatID int64) (*model.User, error) {
	return s.users.FindByTelegramChatID(ctx, chatID)
}

// ListTelegramUsers returns every account with a linked chat.
func (s *UserService) ListTelegramUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListWithTelegram(ctx)
}

// Promote grants the admin role to the account with the given email.
func (s *UserService) Promote(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperr.Validation("email is required")
	}
	if err := s.users.SetRole(ctx, email, model.RoleAdmin); err != nil {
		return err
	}
	s.log.Info("user promoted", "email", email)
	return nil
}
