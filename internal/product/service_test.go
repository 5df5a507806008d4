// AngelaMos | 2026
// service_test.go

package product_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/resale-console/internal/core"
	"github.com/carterperez-dev/templates/resale-console/internal/product"
)

// memoryRepo keeps the catalog in a map and enforces the unique key the
// way the products_key index does.
type memoryRepo struct {
	mu       sync.Mutex
	products map[string]product.Product
	seq      int
	order    map[string]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products: make(map[string]product.Product),
		order:    make(map[string]int),
	}
}

func (m *memoryRepo) keyTaken(key, exceptID string) bool {
	for id, p := range m.products {
		if id != exceptID && p.Key == key {
			return true
		}
	}
	return false
}

func (m *memoryRepo) Create(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.keyTaken(p.Key, "") {
		return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
	}
	m.seq++
	p.CreatedAt = time.Unix(int64(m.seq), 0)
	p.UpdatedAt = p.CreatedAt
	m.products[p.ID] = *p
	m.order[p.ID] = m.seq
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	return &p, nil
}

func (m *memoryRepo) GetByKey(_ context.Context, key string) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.products {
		if p.Key == key {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("get product by key: %w", core.ErrNotFound)
}

func (m *memoryRepo) Update(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.ID]; !ok {
		return fmt.Errorf("update product: %w", core.ErrNotFound)
	}
	if m.keyTaken(p.Key, p.ID) {
		return fmt.Errorf("update product: %w", core.ErrDuplicateKey)
	}
	m.products[p.ID] = *p
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}
	delete(m.products, id)
	return nil
}

func (m *memoryRepo) List(
	_ context.Context,
	params product.ListProductsParams,
) ([]product.Product, int, error) {
	params.Normalize()

	m.mu.Lock()
	var matched []product.Product
	for _, p := range m.products {
		if matchesProduct(params, &p) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return m.order[matched[i].ID] > m.order[matched[j].ID]
	})
	m.mu.Unlock()

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)
	return matched[start:end], total, nil
}

// matchesProduct applies the filters of the SQL listing: search is a
// case-insensitive substring over phone name, brand, lot name and key.
func matchesProduct(params product.ListProductsParams, p *product.Product) bool {
	if params.Search != "" {
		term := strings.ToLower(params.Search)
		found := false
		for _, field := range []string{p.PhoneName, p.Brand, p.LotName, p.Key} {
			if strings.Contains(strings.ToLower(field), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if params.Brand != "" && !strings.EqualFold(p.Brand, params.Brand) {
		return false
	}
	if params.Grade != "" && string(p.Grade) != params.Grade {
		return false
	}
	if params.IsActive != nil && p.IsActive != *params.IsActive {
		return false
	}
	return true
}

func (m *memoryRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

func newProduct(name, brand, lot, key string) product.CreateProductRequest {
	return product.CreateProductRequest{
		PhoneName:    name,
		Brand:        brand,
		LotName:      lot,
		ChannelPrice: 100,
		SSPrice:      110,
		FloatedPrice: 120,
		Grade:        "A",
		Key:          key,
	}
}

func seedCatalog(t *testing.T, svc *product.Service) {
	t.Helper()
	ctx := context.Background()
	for _, req := range []product.CreateProductRequest{
		newProduct("Pixel 8", "Google", "LOT-1", "SKU-001"),
		newProduct("Galaxy S23", "Samsung", "LOT-1", "SKU-002"),
		newProduct("iPhone 14", "Apple", "PIXELATED-LOT", "SKU-003"),
		newProduct("Redmi Note", "Xiaomi", "LOT-2", "pixel-sku"),
		newProduct("Moto G", "Motorola", "LOT-3", "SKU-005"),
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}
}

func TestCreateDefaultsActive(t *testing.T) {
	svc := product.NewService(newMemoryRepo())

	p, err := svc.Create(context.Background(), newProduct(" Pixel 8 ", "Google", "LOT-1", "SKU-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.IsActive)
	assert.Equal(t, "Pixel 8", p.PhoneName)
	assert.Equal(t, product.GradeA, p.Grade)
}

func TestCreateDuplicateKey(t *testing.T) {
	ctx := context.Background()
	svc := product.NewService(newMemoryRepo())

	_, err := svc.Create(ctx, newProduct("Pixel 8", "Google", "LOT-1", "SKU-1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, newProduct("Pixel 9", "Google", "LOT-2", "SKU-1"))
	require.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestCreateRejectsUnknownGrade(t *testing.T) {
	svc := product.NewService(newMemoryRepo())

	req := newProduct("Pixel 8", "Google", "LOT-1", "SKU-1")
	req.Grade = "Z"
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestListSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	svc := product.NewService(newMemoryRepo())
	seedCatalog(t, svc)

	resp, err := svc.List(context.Background(), product.ListProductsParams{Search: "pixel"})
	require.NoError(t, err)

	keys := make([]string, 0, len(resp.Products))
	for _, p := range resp.Products {
		keys = append(keys, p.Key)
	}
	assert.ElementsMatch(t, []string{"SKU-001", "SKU-003", "pixel-sku"}, keys)
	assert.Equal(t, 3, resp.Total)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc := product.NewService(newMemoryRepo())
	seedCatalog(t, svc)

	resp, err := svc.List(context.Background(), product.ListProductsParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.CurrentPage)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "SKU-003", resp.Products[0].Key)
	assert.Equal(t, "SKU-002", resp.Products[1].Key)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	svc := product.NewService(newMemoryRepo())
	seedCatalog(t, svc)

	inactive := newProduct("Pixel 6", "Google", "LOT-9", "SKU-OLD")
	off := false
	inactive.IsActive = &off
	inactive.Grade = "Refurbished"
	_, err := svc.Create(ctx, inactive)
	require.NoError(t, err)

	resp, err := svc.List(ctx, product.ListProductsParams{Brand: "google"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	resp, err = svc.List(ctx, product.ListProductsParams{IsActive: &off})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "SKU-OLD", resp.Products[0].Key)

	resp, err = svc.List(ctx, product.ListProductsParams{Grade: "Refurbished"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestUpdateChecksKeyUniqueness(t *testing.T) {
	ctx := context.Background()
	svc := product.NewService(newMemoryRepo())

	first, err := svc.Create(ctx, newProduct("Pixel 8", "Google", "LOT-1", "SKU-1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, newProduct("Pixel 9", "Google", "LOT-1", "SKU-2"))
	require.NoError(t, err)

	taken := "SKU-2"
	_, err = svc.Update(ctx, first.ID, product.UpdateProductRequest{Key: &taken})
	require.ErrorIs(t, err, core.ErrDuplicateKey)

	price := 99.5
	same := "SKU-1"
	updated, err := svc.Update(ctx, first.ID, product.UpdateProductRequest{
		Key:          &same,
		FloatedPrice: &price,
	})
	require.NoError(t, err)
	assert.InDelta(t, 99.5, updated.FloatedPrice, 0.001)
	assert.Equal(t, "Pixel 8", updated.PhoneName)

	_, err = svc.Update(ctx, "missing", product.UpdateProductRequest{})
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := product.NewService(newMemoryRepo())

	p, err := svc.Create(ctx, newProduct("Pixel 8", "Google", "LOT-1", "SKU-1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ID))
	require.ErrorIs(t, svc.Delete(ctx, p.ID), core.ErrNotFound)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
