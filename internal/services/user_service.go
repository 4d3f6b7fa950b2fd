package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"tool-market/internal/apperrors"
	"tool-market/internal/models"
	"tool-market/internal/repository"
)

type TokenIssuer interface {
	Issue(email string) (string, error)
}

// UserService is the user facade and the role store behind the admin gate.
type UserService struct {
	store  UserStore
	tokens TokenIssuer
	logger zerolog.Logger
}

func NewUserService(store UserStore, tokens TokenIssuer, logger zerolog.Logger) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing users")
		return nil, storeError(err, "user")
	}
	return users, nil
}

// Upsert records the profile under email and hands back a fresh token for it.
func (s *UserService) Upsert(ctx context.Context, email string, profile *models.UserProfile) (*models.UpsertUserResponse, error) {
	email = strings.TrimSpace(email)
	if err := Validate(struct {
		Email string `json:"email" validate:"required,email"`
	}{email}); err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &models.UserProfile{}
	}

	result, err := s.store.UpsertByEmail(ctx, email, profile)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Error upserting user")
		return nil, storeError(err, "user")
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", email).Int64("upserted", result.UpsertedCount).Msg("User upserted")
	return &models.UpsertUserResponse{Result: result, Token: token}, nil
}

// RoleOf resolves the role of email. A user without a record is a customer.
func (s *UserService) RoleOf(ctx context.Context, email string) (models.Role, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return models.RoleCustomer, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Error resolving role")
		return models.RoleCustomer, storeError(err, "user")
	}
	return models.RoleOf(user), nil
}

func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	role, err := s.RoleOf(ctx, email)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}

// MakeAdmin elevates email to admin on behalf of requester, who must already be an admin.
func (s *UserService) MakeAdmin(ctx context.Context, requester, email string) (*models.WriteResult, error) {
	isAdmin, err := s.IsAdmin(ctx, requester)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		s.logger.Warn().Str("requester", requester).Str("email", email).Msg("Role elevation refused")
		return nil, apperrors.New(apperrors.CodeForbidden, "only admins can update user roles")
	}

	result, err := s.store.SetRole(ctx, email, models.RoleAdmin)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Error updating user role")
		return nil, storeError(err, "user")
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "user %s not found", email)
	}

	s.logger.Info().Str("email", email).Str("admin", requester).Msg("User role updated")
	return result, nil
}
