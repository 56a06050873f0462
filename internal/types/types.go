package types

// Settings is the single-row store configuration served to clients.
type Settings struct {
	StoreNumber  string `json:"store_number"`
	StoreLabel   string `json:"store_label"`
	Intersection string `json:"intersection"`
}

// Unit is a unit of measure.
type Unit struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Location is a storage location.
type Location struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Item is a catalog item. Quantities are expressed in the item's base unit;
// CaseSize converts between cases and base units for display only.
type Item struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	BaseUnitID        string   `json:"base_unit_id"`
	CaseSize          *float64 `json:"case_size"`
	AllowPartials     bool     `json:"allow_partials"`
	ParLevel          *float64 `json:"par_level"`
	LowThreshold      *float64 `json:"low_threshold"`
	DefaultLocationID *string  `json:"default_location_id"`
	Active            bool     `json:"active"`
}

// ItemParams holds the writable fields for creating or updating an item.
type ItemParams struct {
	Name              string   `json:"name"`
	BaseUnitID        string   `json:"base_unit_id"`
	CaseSize          *float64 `json:"case_size"`
	AllowPartials     bool     `json:"allow_partials"`
	ParLevel          *float64 `json:"par_level"`
	LowThreshold      *float64 `json:"low_threshold"`
	DefaultLocationID *string  `json:"default_location_id"`
	Active            bool     `json:"active"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	EventCount int64  `json:"event_count"`
}
