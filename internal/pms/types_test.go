package pms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActiveListings_FollowsPagination(t *testing.T) {
	// 250 listings: two full pages and a final short one.
	const total = 250

	var requestedFilters []string
	server := newAPIServer(func(w http.ResponseWriter, r *http.Request) {
		requestedFilters = append(requestedFilters, r.URL.Query().Get("filters"))

		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		var results []Listing
		for i := skip; i < skip+limit && i < total; i++ {
			results = append(results, Listing{
				ID:       fmt.Sprintf("listing-%d", i),
				Nickname: fmt.Sprintf("Unit %d", i),
				IsActive: true,
			})
		}

		json.NewEncoder(w).Encode(page[Listing]{Results: results, Count: total})
	})
	defer server.Close()

	client, _ := newTestClient(server)

	listings, err := client.ListActiveListings(context.Background())
	require.NoError(t, err)

	assert.Len(t, listings, total)
	assert.Equal(t, "listing-0", listings[0].ID)
	assert.Equal(t, "listing-249", listings[total-1].ID)

	require.Len(t, requestedFilters, 3, "250 records at page size 100 takes three requests")
	for _, f := range requestedFilters {
		assert.Equal(t, `{"isActive":true}`, f)
	}
}

func TestListActiveListings_EmptyCollection(t *testing.T) {
	server := newAPIServer(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(page[Listing]{Results: nil, Count: 0})
	})
	defer server.Close()

	client, _ := newTestClient(server)

	listings, err := client.ListActiveListings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestListReservationsSince_SendsDateFilter(t *testing.T) {
	var gotFilter string
	server := newAPIServer(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filters")
		json.NewEncoder(w).Encode(page[RemoteReservation]{})
	})
	defer server.Close()

	client, _ := newTestClient(server)

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.ListReservationsSince(context.Background(), since)
	require.NoError(t, err)

	assert.Equal(t, `{"checkIn":{"$gte":"2026-08-01"}}`, gotFilter)
}

func TestFetchAll_MalformedPayload(t *testing.T) {
	server := newAPIServer(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})
	defer server.Close()

	client, _ := newTestClient(server)

	_, err := client.ListActiveListings(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding /listings page")
}
