// AngelaMos | 2026
// dto.go

package product

import (
	"strings"
	"time"
)

// MaxPage bounds the page number so the computed offset cannot overflow.
const MaxPage = 1_000_000

type CreateProductRequest struct {
	PhoneName      string  `json:"phoneName"      validate:"required,max=200"`
	Brand          string  `json:"brand"          validate:"required,max=100"`
	LotName        string  `json:"lotName"        validate:"required,max=100"`
	Specifications string  `json:"specifications" validate:"max=2000"`
	ChannelPrice   float64 `json:"channelPrice"   validate:"gte=0"`
	SSPrice        float64 `json:"ssPrice"        validate:"gte=0"`
	FloatedPrice   float64 `json:"floatedPrice"   validate:"gte=0"`
	Grade          string  `json:"grade"          validate:"required,oneof=A B C Refurbished"`
	Key            string  `json:"key"            validate:"required,max=100"`
	IsActive       *bool   `json:"isActive"`
}

// UpdateProductRequest is a partial update. Nil fields are left unchanged.
type UpdateProductRequest struct {
	PhoneName      *string  `json:"phoneName"      validate:"omitempty,min=1,max=200"`
	Brand          *string  `json:"brand"          validate:"omitempty,min=1,max=100"`
	LotName        *string  `json:"lotName"        validate:"omitempty,min=1,max=100"`
	Specifications *string  `json:"specifications" validate:"omitempty,max=2000"`
	ChannelPrice   *float64 `json:"channelPrice"   validate:"omitempty,gte=0"`
	SSPrice        *float64 `json:"ssPrice"        validate:"omitempty,gte=0"`
	FloatedPrice   *float64 `json:"floatedPrice"   validate:"omitempty,gte=0"`
	Grade          *string  `json:"grade"          validate:"omitempty,oneof=A B C Refurbished"`
	Key            *string  `json:"key"            validate:"omitempty,min=1,max=100"`
	IsActive       *bool    `json:"isActive"`
}

func (u UpdateProductRequest) apply(p *Product) {
	if u.PhoneName != nil {
		p.PhoneName = strings.TrimSpace(*u.PhoneName)
	}
	if u.Brand != nil {
		p.Brand = strings.TrimSpace(*u.Brand)
	}
	if u.LotName != nil {
		p.LotName = strings.TrimSpace(*u.LotName)
	}
	if u.Specifications != nil {
		p.Specifications = *u.Specifications
	}
	if u.ChannelPrice != nil {
		p.ChannelPrice = *u.ChannelPrice
	}
	if u.SSPrice != nil {
		p.SSPrice = *u.SSPrice
	}
	if u.FloatedPrice != nil {
		p.FloatedPrice = *u.FloatedPrice
	}
	if u.Grade != nil {
		p.Grade = Grade(*u.Grade)
	}
	if u.Key != nil {
		p.Key = strings.TrimSpace(*u.Key)
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
}

type ProductResponse struct {
	ID             string    `json:"id"`
	PhoneName      string    `json:"phoneName"`
	Brand          string    `json:"brand"`
	LotName        string    `json:"lotName"`
	Specifications string    `json:"specifications"`
	ChannelPrice   float64   `json:"channelPrice"`
	SSPrice        float64   `json:"ssPrice"`
	FloatedPrice   float64   `json:"floatedPrice"`
	Grade          Grade     `json:"grade"`
	Key            string    `json:"key"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type ProductListResponse struct {
	Products    []ProductResponse `json:"products"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	Total       int               `json:"total"`
}

type ListProductsParams struct {
	Page     int
	Limit    int
	Search   string
	Brand    string
	Grade    string `validate:"omitempty,oneof=A B C Refurbished"`
	IsActive *bool
}

func (p *ListProductsParams) Normalize() {
	p.Page = min(max(p.Page, 1), MaxPage)
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p *ListProductsParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func ToProductResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		PhoneName:      p.PhoneName,
		Brand:          p.Brand,
		LotName:        p.LotName,
		Specifications: p.Specifications,
		ChannelPrice:   p.ChannelPrice,
		SSPrice:        p.SSPrice,
		FloatedPrice:   p.FloatedPrice,
		Grade:          p.Grade,
		Key:            p.Key,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func ToProductResponseList(products []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i]))
	}
	return out
}
