package dto

// ProviderResponse is the parts-provider view returned to clients.
type ProviderResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	ShopName  string  `json:"shop_name"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Open      bool    `json:"open"`
	Verified  bool    `json:"verified"`
}

// SetOpenRequest toggles shop visibility in radius searches.
type SetOpenRequest struct {
	Open bool `json:"open"`
}

// VerifyRequest flips a verification flag.
type VerifyRequest struct {
	Verified bool `json:"verified"`
}
