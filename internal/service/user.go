package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"time-control/internal/models"
	"time-control/internal/repository"
	"time-control/pkg/logger"
)

type UserService struct {
	repos  *repository.Repositories
	logger *logrus.Logger
}

func NewUserService(repos *repository.Repositories, log *logrus.Logger) *UserService {
	return &UserService{repos: repos, logger: logger.OrDefault(log)}
}

// CreateUser создает нового активного пользователя с ролью client
func (s *UserService) CreateUser(ctx context.Context, chatID int64, username, firstName, lastName string) (*models.User, error) {
	if firstName == "" {
		return nil, models.NewValidationError("имя не может быть пустым")
	}

	user := &models.User{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleClient,
		IsActive:  true,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.repos.Users.GetByID(ctx, id)
}

func (s *UserService) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	return s.repos.Users.GetByChatID(ctx, chatID)
}

// Actor возвращает исполнителя операций для пользователя. nil - пользователь не найден.
func (s *UserService) Actor(ctx context.Context, id uint) (*models.Actor, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	actor := models.ActorFor(user)
	return &actor, nil
}

// EnsureAdmin выдает роль admin пользователю с chatID, создавая его при необходимости
func (s *UserService) EnsureAdmin(ctx context.Context, chatID int64, firstName string) (*models.User, error) {
	user, err := s.repos.Users.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		if firstName == "" {
			firstName = "Admin"
		}
		user, err = s.CreateUser(ctx, chatID, "", firstName, "")
		if err != nil {
			return nil, err
		}
	}
	if user.IsAdmin() {
		return user, nil
	}

	user.SetRole(models.RoleAdmin)
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("ошибка обновления роли: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"id":      user.ID,
		"chat_id": chatID,
	}).Info("User promoted to admin")
	return user, nil
}

// Deactivate исключает пользователя из проверок незаполненных дней
func (s *UserService) Deactivate(ctx context.Context, id uint) (bool, error) {
	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil || user == nil {
		return false, err
	}
	user.IsActive = false
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) ListActive(ctx context.Context) ([]models.User, error) {
	return s.repos.Users.ListActive(ctx)
}

func (s *UserService) ListAdmins(ctx context.Context) ([]models.User, error) {
	return s.repos.Users.ListAdmins(ctx)
}
