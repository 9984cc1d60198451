package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
)

type listingRow struct {
	ID          string          `db:"id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Price       float64         `db:"price"`
	Currency    string          `db:"currency"`
	Condition   string          `db:"condition"`
	Type        string          `db:"type"`
	BrandID     string          `db:"brand_id"`
	ModelID     string          `db:"model_id"`
	CityID      string          `db:"city_id"`
	SellerID    string          `db:"seller_id"`
	Images      pq.StringArray  `db:"images"`
	IsVerified  bool            `db:"is_verified"`
	Views       int64           `db:"views"`
	Status      string          `db:"status"`
	PublishedAt sql.NullTime    `db:"published_at"`
	CreatedAt   time.Time       `db:"created_at"`
	BrandName   sql.NullString  `db:"brand_name"`
	ModelName   sql.NullString  `db:"model_name"`
	CityName    sql.NullString  `db:"city_name"`
	DistanceKm  sql.NullFloat64 `db:"distance_km"`
}

func (r *listingRow) toDomain(inc db.Include) listing.Listing {
	l := listing.Listing{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
		Condition:   listing.Condition(r.Condition),
		Type:        listing.Type(r.Type),
		BrandID:     r.BrandID,
		ModelID:     r.ModelID,
		CityID:      r.CityID,
		SellerID:    r.SellerID,
		Images:      []string(r.Images),
		IsVerified:  r.IsVerified,
		Views:       r.Views,
		Status:      listing.Status(r.Status),
		PublishedAt: r.PublishedAt.Time,
		CreatedAt:   r.CreatedAt,
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	if inc.Brand && r.BrandName.Valid {
		l.Brand = &listing.Ref{ID: r.BrandID, Name: r.BrandName.String}
	}
	if inc.Model && r.ModelName.Valid {
		l.Model = &listing.Ref{ID: r.ModelID, Name: r.ModelName.String}
	}
	if inc.City && r.CityName.Valid {
		l.City = &listing.Ref{ID: r.CityID, Name: r.CityName.String}
	}
	if r.DistanceKm.Valid {
		d := r.DistanceKm.Float64
		l.DistanceKm = &d
	}
	return l
}
