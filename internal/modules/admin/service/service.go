package admin

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/nawhoknow/internal/entity"
	"anoa.com/nawhoknow/internal/modules/admin/dto"
	userRepo "anoa.com/nawhoknow/internal/modules/user/repository"
	"anoa.com/nawhoknow/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminService interface {
	CreateUser(ctx context.Context, input dto.CreateUserInput) (*dto.AdminUserResponse, error)
	GetAllUsers(ctx context.Context) ([]*entity.User, error)
	UpdateUser(ctx context.Context, id string, input dto.UpdateUserInput) (*dto.AdminUserResponse, error)
	DeleteUser(ctx context.Context, id string) error
}

type adminService struct {
	userRepo userRepo.UserRepository
}

func NewAdminService(userRepo userRepo.UserRepository) AdminService {
	return &adminService{userRepo: userRepo}
}

func (s *adminService) CreateUser(ctx context.Context, input dto.CreateUserInput) (*dto.AdminUserResponse, error) {
	if _, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.NewConflictError("email already registered")
	}
	if _, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperror.NewConflictError("username already taken")
	}

	role, err := s.userRepo.FindRoleByName(ctx, input.Role)
	if err != nil {
		return nil, fmt.Errorf("role %q not found: %w", input.Role, apperror.ErrBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
		Role:         *role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &dto.AdminUserResponse{User: user, Role: role}, nil
}

func (s *adminService) GetAllUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		u.PasswordHash = ""
	}
	return users, nil
}

func (s *adminService) UpdateUser(ctx context.Context, id string, input dto.UpdateUserInput) (*dto.AdminUserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if input.Username != "" && input.Username != user.Username {
		if _, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil {
			return nil, apperror.NewConflictError("username already taken")
		}
		user.Username = input.Username
	}

	if input.Email != "" && input.Email != user.Email {
		if _, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil {
			return nil, apperror.NewConflictError("email already registered")
		}
		user.Email = input.Email
	}

	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashed)
	}

	if input.Role != "" {
		role, err := s.userRepo.FindRoleByName(ctx, input.Role)
		if err != nil {
			return nil, fmt.Errorf("role %q not found: %w", input.Role, apperror.ErrBadRequest)
		}
		user.RoleID = &role.ID
		user.Role = *role
	}

	// Manual points correction leaves no history row; the profile view
	// reports the divergence via history_total.
	if input.Points != nil {
		user.Points = *input.Points
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &dto.AdminUserResponse{User: user, Role: &user.Role}, nil
}

func (s *adminService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}
	return s.userRepo.Delete(ctx, id)
}
