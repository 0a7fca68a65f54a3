package pms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// pageSize is how many records each paginated request asks for.
const pageSize = 100

// Listing is the remote property record as returned by the PMS.
type Listing struct {
	ID           string   `json:"_id"`
	Title        string   `json:"title"`
	Nickname     string   `json:"nickname"`
	PropertyType string   `json:"propertyType"`
	Address      struct {
		Full string `json:"full"`
	} `json:"address"`
	Bedrooms   int      `json:"bedrooms"`
	Bathrooms  float64  `json:"bathrooms"`
	Amenities  []string `json:"amenities"`
	Tags       []string `json:"tags"`
	ListingURL string   `json:"listingUrl"`
	ICalURL    string   `json:"icalUrl"`
	IsActive   bool     `json:"isActive"`
}

// RemoteReservation is the remote reservation record as returned by the PMS.
type RemoteReservation struct {
	ID        string `json:"_id"`
	ListingID string `json:"listingId"`
	Guest     struct {
		FullName  string `json:"fullName"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
	} `json:"guest"`
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
	Status   string    `json:"status"`
	Source   string    `json:"source"`
	Money    struct {
		TotalPrice float64 `json:"totalPrice"`
		Currency   string  `json:"currency"`
	} `json:"money"`
}

// page is the PMS's paginated response envelope.
type page[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}

// ListActiveListings pulls every active listing, following pagination.
func (c *Client) ListActiveListings(ctx context.Context) ([]Listing, error) {
	filters := url.QueryEscape(`{"isActive":true}`)
	return fetchAll[Listing](ctx, c, "/listings", filters)
}

// ListReservationsSince pulls every reservation with a check-in on or after
// the given date, following pagination.
func (c *Client) ListReservationsSince(ctx context.Context, since time.Time) ([]RemoteReservation, error) {
	filter := fmt.Sprintf(`{"checkIn":{"$gte":"%s"}}`, since.Format("2006-01-02"))
	return fetchAll[RemoteReservation](ctx, c, "/reservations", url.QueryEscape(filter))
}

// fetchAll walks a paginated collection endpoint until a short page signals
// the end.
func fetchAll[T any](ctx context.Context, c *Client, path, encodedFilters string) ([]T, error) {
	var all []T

	for skip := 0; ; skip += pageSize {
		reqPath := fmt.Sprintf("%s?limit=%d&skip=%d&filters=%s", path, pageSize, skip, encodedFilters)

		payload, err := c.Execute(ctx, "GET", reqPath, nil)
		if err != nil {
			return nil, err
		}

		var p page[T]
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("decoding %s page: %w", path, err)
		}

		all = append(all, p.Results...)
		if len(p.Results) < pageSize {
			return all, nil
		}
	}
}
