// Package admin содержит операции управления пользователями,
// доступные только администраторам.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
	"github.com/magabrotheeeer/comic-platform/internal/storage/repository"
)

// UserRepository описывает контракт для административных операций.
type UserRepository interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateUserRole(ctx context.Context, userUID, role string) (*models.User, error)
}

// AdminService отвечает за просмотр пользователей и смену ролей.
type AdminService struct {
	users UserRepository
}

// New создает новый экземпляр AdminService.
func New(users UserRepository) *AdminService {
	return &AdminService{users: users}
}

// ListUsers возвращает пользователей с пагинацией.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users, err := s.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser возвращает пользователя по uid.
func (s *AdminService) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateRole меняет роль пользователя. Администратор не может снять
// роль с самого себя.
func (s *AdminService) UpdateRole(ctx context.Context, actorUID, targetUID, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", errs.ErrInvalidInput, role)
	}
	if actorUID == targetUID && role != models.RoleAdmin {
		return nil, errs.ErrForbidden
	}

	user, err := s.users.UpdateUserRole(ctx, targetUID, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return user, nil
}
