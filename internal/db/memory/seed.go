package memory

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bazaarhq/listing-search/internal/domain/listing"
)

type seedFile struct {
	Brands   []listing.Brand `yaml:"brands"`
	Models   []listing.Model `yaml:"models"`
	Cities   []listing.City  `yaml:"cities"`
	Listings []seedListing   `yaml:"listings"`
}

type seedListing struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Price       float64   `yaml:"price"`
	Currency    string    `yaml:"currency"`
	Condition   string    `yaml:"condition"`
	Type        string    `yaml:"type"`
	BrandID     string    `yaml:"brand_id"`
	ModelID     string    `yaml:"model_id"`
	CityID      string    `yaml:"city_id"`
	SellerID    string    `yaml:"seller_id"`
	Images      []string  `yaml:"images"`
	Verified    bool      `yaml:"verified"`
	Views       int64     `yaml:"views"`
	Status      string    `yaml:"status"`
	PublishedAt time.Time `yaml:"published_at"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// Load reads a YAML seed file into a new store.
// Listings default to type LISTING and status ACTIVE.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from config
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML seed data into a new store.
func Parse(data []byte) (*Store, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	d := Data{Brands: f.Brands, Models: f.Models, Cities: f.Cities}
	for i, sl := range f.Listings {
		if sl.ID == "" {
			return nil, fmt.Errorf("seed listing %d: id is required", i)
		}
		l := listing.Listing{
			ID:          sl.ID,
			Title:       sl.Title,
			Description: sl.Description,
			Price:       sl.Price,
			Currency:    sl.Currency,
			Condition:   listing.Condition(sl.Condition),
			Type:        listing.Type(sl.Type),
			BrandID:     sl.BrandID,
			ModelID:     sl.ModelID,
			CityID:      sl.CityID,
			SellerID:    sl.SellerID,
			Images:      sl.Images,
			IsVerified:  sl.Verified,
			Views:       sl.Views,
			Status:      listing.Status(sl.Status),
			PublishedAt: sl.PublishedAt,
			CreatedAt:   sl.CreatedAt,
		}
		if l.Type == "" {
			l.Type = listing.TypeListing
		}
		if l.Status == "" {
			l.Status = listing.StatusActive
		}
		if !l.Condition.IsValid() {
			return nil, fmt.Errorf("seed listing %s: invalid condition %q", l.ID, sl.Condition)
		}
		d.Listings = append(d.Listings, l)
	}
	return New(d), nil
}
