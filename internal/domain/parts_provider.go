package domain

import "time"

// PartsProvider models a spare-parts shop discoverable by radius search.
type PartsProvider struct {
	ID        string
	UserID    string
	ShopName  string
	Address   string
	Latitude  float64
	Longitude float64
	Open      bool
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
