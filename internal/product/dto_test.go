// AngelaMos | 2026
// dto_test.go

package product_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/templates/resale-console/internal/product"
)

func TestListParamsNormalizeBoundsPage(t *testing.T) {
	tests := []struct {
		name   string
		page   int
		limit  int
		want   int
		offset int
	}{
		{"zero page", 0, 10, 1, 0},
		{"negative page", -4, 10, 1, 0},
		{"overflowing page", math.MaxInt, 100, product.MaxPage, (product.MaxPage - 1) * 100},
		{"last page", product.MaxPage, 10, product.MaxPage, (product.MaxPage - 1) * 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := product.ListProductsParams{Page: tt.page, Limit: tt.limit}
			p.Normalize()

			assert.Equal(t, tt.want, p.Page)
			assert.Equal(t, tt.offset, p.Offset())
			assert.GreaterOrEqual(t, p.Offset(), 0)
		})
	}
}
