package services

import (
	"context"
	"errors"

	"tool-market/internal/apperrors"
	"tool-market/internal/models"
	"tool-market/internal/repository"
)

type ToolStore interface {
	List(ctx context.Context) ([]models.Tool, error)
	FindByID(ctx context.Context, id string) (*models.Tool, error)
	Insert(ctx context.Context, tool *models.Tool) (*models.InsertResult, error)
	Upsert(ctx context.Context, id string, tool *models.Tool) (*models.WriteResult, error)
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (*models.InsertResult, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	ListByEmail(ctx context.Context, email string) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	MarkPaid(ctx context.Context, id, transactionID string) (*models.Order, error)
	DeleteByEmail(ctx context.Context, email string) (*models.DeleteResult, error)
}

type ReviewStore interface {
	Insert(ctx context.Context, review *models.Review) (*models.InsertResult, error)
	List(ctx context.Context) ([]models.Review, error)
}

type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertByEmail(ctx context.Context, email string, profile *models.UserProfile) (*models.WriteResult, error)
	SetRole(ctx context.Context, email string, role models.Role) (*models.WriteResult, error)
}

// storeError translates repository sentinels into request-scoped errors.
func storeError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.Newf(apperrors.CodeNotFound, "%s not found", what)
	case errors.Is(err, repository.ErrInvalidID):
		return apperrors.Newf(apperrors.CodeValidation, "invalid %s id", what)
	case apperrors.As(err) != nil:
		return err
	default:
		return apperrors.Wrap(apperrors.CodeInternal, err, what+" store failure")
	}
}
