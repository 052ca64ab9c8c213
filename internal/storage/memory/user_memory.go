package memory

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
	"context"

	"github.com/google/uuid"
)

func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[user.Username]; taken {
		return nil, app_errors.ErrUserExists
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	stored := user
	s.users[user.ID] = &stored
	s.usernames[user.Username] = user.ID
	return &user, nil
}

func (s *Store) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) UserByName(ctx context.Context, name string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[name]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	out := *s.users[id]
	return &out, nil
}
