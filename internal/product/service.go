// AngelaMos | 2026
// service.go

// Package product is the resale catalog: lots of handsets with their
// buying channel prices, grade and a unique external key.
package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/resale-console/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	product := &Product{
		ID:             uuid.New().String(),
		PhoneName:      strings.TrimSpace(req.PhoneName),
		Brand:          strings.TrimSpace(req.Brand),
		LotName:        strings.TrimSpace(req.LotName),
		Specifications: req.Specifications,
		ChannelPrice:   req.ChannelPrice,
		SSPrice:        req.SSPrice,
		FloatedPrice:   req.FloatedPrice,
		Grade:          Grade(req.Grade),
		Key:            strings.TrimSpace(req.Key),
		IsActive:       true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if !product.Grade.Valid() {
		return nil, fmt.Errorf("create product: grade %q: %w", req.Grade, core.ErrInvalidInput)
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "product created",
		"product_id", product.ID,
		"key", product.Key,
	)

	return product, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial update. A changed key is checked against the
// rest of the catalog first; the unique index still backs the check.
func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateProductRequest,
) (*Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousKey := product.Key
	req.apply(product)

	if product.Key != previousKey {
		existing, err := s.repo.GetByKey(ctx, product.Key)
		switch {
		case err == nil && existing.ID != product.ID:
			return nil, fmt.Errorf("update product: %w", core.ErrDuplicateKey)
		case err != nil && !errors.Is(err, core.ErrNotFound):
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "product removed", "product_id", id)
	return nil
}

func (s *Service) List(
	ctx context.Context,
	params ListProductsParams,
) (*ProductListResponse, error) {
	params.Normalize()

	products, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &ProductListResponse{
		Products:    ToProductResponseList(products),
		TotalPages:  (total + params.Limit - 1) / params.Limit,
		CurrentPage: params.Page,
		Total:       total,
	}, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
