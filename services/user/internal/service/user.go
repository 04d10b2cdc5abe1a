package service

import (
	"context"

	"orderhub/pkg/apperr"
	"orderhub/pkg/logging"
	"orderhub/services/user/internal/models"
	"orderhub/services/user/internal/repo"
	"orderhub/services/user/internal/transport"
)

type UserService struct {
	Repo *repo.GormRepo
}

func toResponse(u *models.User) *transport.UserResponse {
	return &transport.UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		Status:    u.Status,
	}
}

func (s *UserService) Create(ctx context.Context, req transport.CreateUserRequest) (*transport.UserResponse, error) {
	l := logging.FromContext(ctx).With("svc", "user.create")

	if req.FirstName == "" || req.Email == "" {
		return nil, apperr.ErrValidation.WithMessage("firstName and email are required")
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Status:    models.StatusActive,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}

	l.Info("user created", "user_id", user.ID)
	return toResponse(user), nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*transport.UserResponse, error) {
	user, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(user), nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*transport.UserResponse, error) {
	if email == "" {
		return nil, apperr.ErrValidation.WithMessage("email is required")
	}
	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toResponse(user), nil
}

func (s *UserService) Exists(ctx context.Context, id uint) (bool, error) {
	return s.Repo.ExistsByID(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id uint, req transport.UpdateUserRequest) (*transport.UserResponse, error) {
	user, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.Status != nil {
		if *req.Status != models.StatusActive && *req.Status != models.StatusInactive {
			return nil, apperr.ErrValidation.WithMessage("unknown status")
		}
		user.Status = *req.Status
	}

	if err := s.Repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return toResponse(user), nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}

func (s *UserService) List(ctx context.Context, f repo.ListFilter) ([]transport.UserResponse, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Status != "" && f.Status != models.StatusActive && f.Status != models.StatusInactive {
		return nil, apperr.ErrValidation.WithMessage("unknown status")
	}

	users, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]transport.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *toResponse(&users[i]))
	}
	return out, nil
}
