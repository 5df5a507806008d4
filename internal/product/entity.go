// AngelaMos | 2026
// entity.go

package product

import (
	"time"
)

type Grade string

const (
	GradeA           Grade = "A"
	GradeB           Grade = "B"
	GradeC           Grade = "C"
	GradeRefurbished Grade = "Refurbished"
)

func (g Grade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeRefurbished:
		return true
	}
	return false
}

// Product is one resale lot. Key is the external SKU and is unique across
// the catalog.
type Product struct {
	ID             string    `db:"id"`
	PhoneName      string    `db:"phone_name"`
	Brand          string    `db:"brand"`
	LotName        string    `db:"lot_name"`
	Specifications string    `db:"specifications"`
	ChannelPrice   float64   `db:"channel_price"`
	SSPrice        float64   `db:"ss_price"`
	FloatedPrice   float64   `db:"floated_price"`
	Grade          Grade     `db:"grade"`
	Key            string    `db:"product_key"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
