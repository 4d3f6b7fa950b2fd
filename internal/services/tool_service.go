package services

import (
	"context"

	"github.com/rs/zerolog"

	"tool-market/internal/models"
)

type ToolService struct {
	store  ToolStore
	logger zerolog.Logger
}

func NewToolService(store ToolStore, logger zerolog.Logger) *ToolService {
	return &ToolService{
		store:  store,
		logger: logger,
	}
}

func (s *ToolService) List(ctx context.Context) ([]models.Tool, error) {
	tools, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing tools")
		return nil, storeError(err, "tool")
	}
	return tools, nil
}

func (s *ToolService) Get(ctx context.Context, id string) (*models.Tool, error) {
	tool, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "tool")
	}
	return tool, nil
}

func (s *ToolService) Create(ctx context.Context, tool *models.Tool) (*models.InsertResult, error) {
	if err := Validate(tool); err != nil {
		return nil, err
	}
	res, err := s.store.Insert(ctx, tool)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error creating tool")
		return nil, storeError(err, "tool")
	}
	s.logger.Info().Str("tool_id", res.InsertedID).Str("name", tool.Name).Msg("Tool created")
	return res, nil
}

// Upsert applies the non-empty fields of tool to the item with id, creating it if needed.
func (s *ToolService) Upsert(ctx context.Context, id string, tool *models.Tool) (*models.WriteResult, error) {
	if err := ValidateExcept(tool, "Name"); err != nil {
		return nil, err
	}
	res, err := s.store.Upsert(ctx, id, tool)
	if err != nil {
		s.logger.Error().Err(err).Str("tool_id", id).Msg("Error upserting tool")
		return nil, storeError(err, "tool")
	}
	return res, nil
}
