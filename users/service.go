package users

import (
	"context"
	"fmt"
	"log/slog"
)

// Service is a thin CRUD layer over the user store. The payment workflow
// depends on it for existence checks only.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

func (s *Service) FindAllUsers(ctx context.Context) ([]*User, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []*User{}
	}
	return all, nil
}

func (s *Service) FindUser(ctx context.Context, id int64) (*User, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if req.Name == "" || req.Email == "" {
		return nil, fmt.Errorf("name and email are required")
	}

	u, err := s.store.Create(ctx, req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		slog.Int64("user_id", u.ID),
		slog.String("email", u.Email),
	)

	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	return s.store.Update(ctx, id, req.Name, req.Email)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.Int64("user_id", id))
	return nil
}
