package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tool-market/internal/apperrors"
	"tool-market/internal/models"
	"tool-market/internal/repository"
)

func TestToolService(t *testing.T) {
	svc := NewToolService(repository.NewMemoryToolRepository(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Tool{Price: 3})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	res, err := svc.Create(ctx, &models.Tool{Name: "Hammer", Price: 12.5, Quantity: 40})
	require.NoError(t, err)

	tool, err := svc.Get(ctx, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", tool.Name)

	_, err = svc.Upsert(ctx, res.InsertedID, &models.Tool{Quantity: 35})
	require.NoError(t, err)

	_, err = svc.Upsert(ctx, res.InsertedID, &models.Tool{Price: -1})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	tools, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, 35, tools[0].Quantity)

	_, err = svc.Get(ctx, "64b7f0c2a1b2c3d4e5f60718")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestReviewService(t *testing.T) {
	svc := NewReviewService(repository.NewMemoryReviewRepository(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Add(ctx, &models.Review{Email: "u@x.com", Text: "Solid", Rating: 9})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = svc.Add(ctx, &models.Review{Email: "u@x.com", Text: "Solid", Rating: 5})
	require.NoError(t, err)

	reviews, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Solid", reviews[0].Text)
}
