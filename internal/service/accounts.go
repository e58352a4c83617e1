package service

import (
	"context"
	"fmt"
	"strings"

	"inhouse52/internal/models"
	"inhouse52/internal/security"
)

// Register creates a collaborator account. Username and email must be
// unique across all users.
func (s *Service) Register(ctx context.Context, username, email, password string) (models.User, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" {
		return models.User{}, newError(ErrInvalidInput, "username and email are required")
	}
	if !security.ValidatePassword(password) {
		return models.User{}, newError(ErrInvalidInput, "password is required")
	}
	digest, err := security.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return models.User{}, err
	}
	if state.UsernameTaken(username) {
		return models.User{}, newError(ErrConflict, "username already exists")
	}
	if state.EmailTaken(email) {
		return models.User{}, newError(ErrConflict, "email already registered")
	}

	user := state.AddUser(models.User{
		Username:  username,
		Email:     email,
		Password:  digest,
		Role:      models.RoleCollaborator,
		CreatedAt: models.NewTimestamp(s.now()),
	})
	if err := s.store.Save(ctx, state); err != nil {
		return models.User{}, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks credentials and issues a bearer token. Legacy unsalted
// digests are replaced with bcrypt on success.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	state, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	user, ok := state.UserByUsername(username)
	if !ok {
		s.logger.Warn("login failed", "username", username, "reason", "unknown user")
		return "", newError(ErrUnauthorized, "incorrect username or password")
	}
	match, legacy := security.CheckPassword(user.Password, password)
	if !match {
		s.logger.Warn("login failed", "username", username, "reason", "bad password")
		return "", newError(ErrUnauthorized, "incorrect username or password")
	}
	if legacy {
		s.upgradeDigest(ctx, user.ID, password)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *Service) upgradeDigest(ctx context.Context, userID int, password string) {
	digest, err := security.HashPassword(password)
	if err != nil {
		s.logger.Error("rehash password", "user_id", userID, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("rehash password: load state", "user_id", userID, "error", err)
		return
	}
	user, ok := state.UserByID(userID)
	if !ok {
		return
	}
	user.Password = digest
	state.ReplaceUser(user)
	if err := s.store.Save(ctx, state); err != nil {
		s.logger.Error("rehash password: save state", "user_id", userID, "error", err)
		return
	}
	s.logger.Info("upgraded legacy password digest", "user_id", userID)
}

// ListUsers returns every account. Only roles allowed to manage users may call it.
func (s *Service) ListUsers(ctx context.Context, requester models.User) ([]models.PublicUser, error) {
	if !requester.Role.CanManageUsers() {
		return nil, newError(ErrForbidden, "access denied")
	}
	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]models.PublicUser, 0, len(state.Users))
	for _, u := range state.Users {
		users = append(users, u.Public())
	}
	return users, nil
}
