package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tool-market/internal/models"
)

type fakeProcessor struct {
	mu         sync.Mutex
	created    []int64
	keys       []string
	currencies []string
	statuses   map[string]models.PaymentIntentStatus
	createErr  error
	getErr     error
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{statuses: map[string]models.PaymentIntentStatus{}}
}

func (p *fakeProcessor) CreateIntent(_ context.Context, amount int64, currency, key string) (*models.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.created = append(p.created, amount)
	p.keys = append(p.keys, key)
	p.currencies = append(p.currencies, currency)
	id := fmt.Sprintf("pi_%d", len(p.created))
	return &models.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       amount,
		Currency:     currency,
		Status:       "requires_payment_method",
	}, nil
}

func (p *fakeProcessor) RetrieveIntent(_ context.Context, id string) (*models.PaymentIntent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return nil, p.getErr
	}
	status, ok := p.statuses[id]
	if !ok {
		return nil, models.ErrUnknownIntent
	}
	return &models.PaymentIntent{ID: id, Status: status}, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	failGet bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return "", false, errors.New("cache down")
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}
