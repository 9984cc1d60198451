// Package listing holds read-only projections of marketplace entities
// owned by the listings database.
package listing

import "time"

// Condition is the physical condition of a listed item.
type Condition string

// Condition values.
const (
	ConditionNew     Condition = "NEW"
	ConditionLikeNew Condition = "LIKE_NEW"
	ConditionGood    Condition = "GOOD"
	ConditionFair    Condition = "FAIR"
	ConditionPoor    Condition = "POOR"
)

// Conditions lists all conditions in display order.
var Conditions = []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}

var conditionLabels = map[Condition]string{
	ConditionNew:     "New",
	ConditionLikeNew: "Like New",
	ConditionGood:    "Good",
	ConditionFair:    "Fair",
	ConditionPoor:    "Poor",
}

// IsValid reports whether c is a known condition.
func (c Condition) IsValid() bool {
	_, ok := conditionLabels[c]
	return ok
}

// Label returns the human-readable name.
func (c Condition) Label() string {
	if l, ok := conditionLabels[c]; ok {
		return l
	}
	return string(c)
}

// Type distinguishes offers from wanted ads.
type Type string

// Type values.
const (
	TypeListing Type = "LISTING"
	TypeWanted  Type = "WANTED"
)

// IsValid reports whether t is a known listing type.
func (t Type) IsValid() bool { return t == TypeListing || t == TypeWanted }

// Status is the moderation/lifecycle state of a listing.
type Status string

// Status values.
const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusExpired   Status = "EXPIRED"
	StatusDeleted   Status = "DELETED"
)

// Ref is a foreign-key reference resolved to its display name.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Listing is a marketplace listing as seen by search.
type Listing struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Currency    string    `json:"currency" db:"currency"`
	Condition   Condition `json:"condition" db:"condition"`
	Type        Type      `json:"type" db:"type"`
	BrandID     string    `json:"brandId,omitempty" db:"brand_id"`
	ModelID     string    `json:"modelId,omitempty" db:"model_id"`
	CityID      string    `json:"cityId,omitempty" db:"city_id"`
	SellerID    string    `json:"sellerId" db:"seller_id"`
	Images      []string  `json:"images" db:"-"`
	IsVerified  bool      `json:"isVerified" db:"is_verified"`
	Views       int64     `json:"views" db:"views"`
	Status      Status    `json:"status" db:"status"`
	PublishedAt time.Time `json:"publishedAt" db:"published_at"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`

	// Populated only when the query asks for included relations.
	Brand *Ref `json:"brand,omitempty" db:"-"`
	Model *Ref `json:"model,omitempty" db:"-"`
	City  *Ref `json:"city,omitempty" db:"-"`

	// DistanceKm is set when results are ordered by distance.
	DistanceKm *float64 `json:"distanceKm,omitempty" db:"-"`
}

// IsVisible reports whether the listing may appear in search results at now.
func (l *Listing) IsVisible(now time.Time) bool {
	return l.Status == StatusActive && !l.PublishedAt.IsZero() && !l.PublishedAt.After(now)
}

// Brand is a product manufacturer.
type Brand struct {
	ID   string `json:"id" db:"id" yaml:"id"`
	Name string `json:"name" db:"name" yaml:"name"`
	Slug string `json:"slug" db:"slug" yaml:"slug"`
	Logo string `json:"logo,omitempty" db:"logo" yaml:"logo"`
}

// Model is a product line of a brand.
type Model struct {
	ID      string `json:"id" db:"id" yaml:"id"`
	BrandID string `json:"brandId" db:"brand_id" yaml:"brand_id"`
	Name    string `json:"name" db:"name" yaml:"name"`
	Slug    string `json:"slug" db:"slug" yaml:"slug"`
	Image   string `json:"image,omitempty" db:"image" yaml:"image"`

	// BrandName is filled by catalog lookups that join the brand.
	BrandName string `json:"brandName,omitempty" db:"brand_name" yaml:"-"`
}

// City is the unit of geographic filtering.
type City struct {
	ID          string  `json:"id" db:"id" yaml:"id"`
	Name        string  `json:"name" db:"name" yaml:"name"`
	CountryCode string  `json:"countryCode" db:"country_code" yaml:"country_code"`
	Latitude    float64 `json:"latitude" db:"latitude" yaml:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude" yaml:"longitude"`
	Population  int64   `json:"population" db:"population" yaml:"population"`
}

// CachedCity is a city known to the local cache, keyed by the id the
// external geocoder assigned to it.
type CachedCity struct {
	ExternalID  string  `json:"externalId"`
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	CountryCode string  `json:"countryCode"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Population  int64   `json:"population,omitempty"`
}
