package users

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inmemStore struct {
	rows   map[int64]*User
	nextID int64
}

func newInmemStore() *inmemStore {
	return &inmemStore{rows: map[int64]*User{}, nextID: 1}
}

func (s *inmemStore) Get(_ context.Context, id int64) (*User, error) {
	u, ok := s.rows[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *inmemStore) List(_ context.Context) ([]*User, error) {
	var all []*User
	for id := int64(1); id < s.nextID; id++ {
		if u, ok := s.rows[id]; ok {
			all = append(all, u)
		}
	}
	return all, nil
}

func (s *inmemStore) Create(_ context.Context, name, email string) (*User, error) {
	now := time.Now()
	u := &User{ID: s.nextID, Name: name, Email: email, CreatedAt: now, UpdatedAt: now}
	s.rows[u.ID] = u
	s.nextID++
	return u, nil
}

func (s *inmemStore) Update(_ context.Context, id int64, name, email string) (*User, error) {
	u, ok := s.rows[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Name = name
	u.Email = email
	u.UpdatedAt = time.Now()
	return u, nil
}

func (s *inmemStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.rows[id]; !ok {
		return ErrUserNotFound
	}
	delete(s.rows, id)
	return nil
}

func newTestService() (*Service, *inmemStore) {
	store := newInmemStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, log), store
}

func TestCreateUser(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.CreateUser(context.Background(), CreateUserRequest{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "A", u.Name)

	found, err := svc.FindUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", found.Email)
}

func TestCreateUserRequiresNameAndEmail(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{Name: "", Email: "a@example.com"})
	require.Error(t, err)

	_, err = svc.CreateUser(context.Background(), CreateUserRequest{Name: "A", Email: ""})
	require.Error(t, err)

	assert.Empty(t, store.rows)
}

func TestFindUserNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.FindUser(context.Background(), 42)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindAllUsersEmpty(t *testing.T) {
	svc, _ := newTestService()

	all, err := svc.FindAllUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.CreateUser(context.Background(), CreateUserRequest{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(context.Background(), u.ID, UpdateUserRequest{Name: "B", Email: "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, "b@example.com", updated.Email)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateUser(context.Background(), 42, UpdateUserRequest{Name: "B", Email: "b@example.com"})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.CreateUser(context.Background(), CreateUserRequest{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), u.ID))

	_, err = svc.FindUser(context.Background(), u.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	require.ErrorIs(t, svc.DeleteUser(context.Background(), u.ID), ErrUserNotFound)
}
