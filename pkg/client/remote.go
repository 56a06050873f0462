package client

import (
	"context"
	"net/http"
)

// Login exchanges the shared credential for a bearer token. A rejected
// credential surfaces as ErrUnauthorized with no hint about which field was
// wrong.
func Login(ctx context.Context, baseURL, username, password string) (string, error) {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var resp struct {
		Token string `json:"token"`
	}
	if err := doJSON(ctx, newHTTPClient(), http.MethodPost, baseURL+"/auth/login", "", req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Remote is a thin client for the read-mostly reference data and catalog
// endpoints that surround the sync engine.
type Remote struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemote creates a Remote bound to one service and credential.
func NewRemote(baseURL, token string) *Remote {
	return &Remote{baseURL: baseURL, token: token, client: newHTTPClient()}
}

// FetchSettings returns the store-level settings.
func (r *Remote) FetchSettings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := doJSON(ctx, r.client, http.MethodGet, r.baseURL+"/meta/settings", r.token, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// FetchUnits returns all units of measure.
func (r *Remote) FetchUnits(ctx context.Context) ([]Unit, error) {
	var units []Unit
	if err := doJSON(ctx, r.client, http.MethodGet, r.baseURL+"/meta/units", r.token, nil, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// FetchLocations returns all storage locations.
func (r *Remote) FetchLocations(ctx context.Context) ([]Location, error) {
	var locations []Location
	if err := doJSON(ctx, r.client, http.MethodGet, r.baseURL+"/meta/locations", r.token, nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// FetchItems returns active catalog items.
func (r *Remote) FetchItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := doJSON(ctx, r.client, http.MethodGet, r.baseURL+"/items", r.token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem creates a catalog item and returns its id.
func (r *Remote) CreateItem(ctx context.Context, p ItemParams) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := doJSON(ctx, r.client, http.MethodPost, r.baseURL+"/items", r.token, p, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// UpdateItem replaces a catalog item's fields.
func (r *Remote) UpdateItem(ctx context.Context, id string, p ItemParams) error {
	return doJSON(ctx, r.client, http.MethodPut, r.baseURL+"/items/"+id, r.token, p, nil)
}

// OnHand returns per-item on-hand totals in base units.
func (r *Remote) OnHand(ctx context.Context) (map[string]float64, error) {
	var totals map[string]float64
	if err := doJSON(ctx, r.client, http.MethodGet, r.baseURL+"/inventory/onhand", r.token, nil, &totals); err != nil {
		return nil, err
	}
	return totals, nil
}
