package services

import (
	"context"

	"github.com/rs/zerolog"

	"tool-market/internal/models"
)

// ReviewService appends and lists reviews; there is no update or delete path.
type ReviewService struct {
	store  ReviewStore
	logger zerolog.Logger
}

func NewReviewService(store ReviewStore, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: logger,
	}
}

func (s *ReviewService) Add(ctx context.Context, review *models.Review) (*models.InsertResult, error) {
	if err := Validate(review); err != nil {
		return nil, err
	}
	res, err := s.store.Insert(ctx, review)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error adding review")
		return nil, storeError(err, "review")
	}
	return res, nil
}

func (s *ReviewService) List(ctx context.Context) ([]models.Review, error) {
	reviews, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing reviews")
		return nil, storeError(err, "review")
	}
	return reviews, nil
}
