package users

import (
	"context"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// User is a registered account that payments are attributed to.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest is the POST /api/users body
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest is the PUT /api/users/{id} body
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store is the narrow persistence interface the user service depends on
type Store interface {
	Get(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, name, email string) (*User, error)
	Update(ctx context.Context, id int64, name, email string) (*User, error)
	Delete(ctx context.Context, id int64) error
}

// UserService defines the business logic interface
type UserService interface {
	FindAllUsers(ctx context.Context) ([]*User, error)
	FindUser(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
}
