package service

import (
	"context"

	"inhouse52/internal/models"
)

// Resolve maps a bearer token to the user it was issued for, looked up in
// freshly loaded state. Token errors from the verifier are returned as is.
func (s *Service) Resolve(ctx context.Context, token string) (models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return models.User{}, err
	}
	state, err := s.store.Load(ctx)
	if err != nil {
		return models.User{}, err
	}
	user, ok := state.UserByID(userID)
	if !ok {
		return models.User{}, newError(ErrNotFound, "user not found")
	}
	return user, nil
}
