package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hennalash/go-client/api"
	"github.com/hennalash/go-client/cache"
	"github.com/hennalash/go-client/logger"
)

func newBookingClient(t *testing.T, url string) *Client {
	t.Helper()
	memo := cache.NewInMemory(context.Background())
	t.Cleanup(func() { memo.Close() })
	apiClient := api.New(url, api.WithLogger(logger.NewTestLogger()))
	return New(apiClient, memo, WithLogger(logger.NewTestLogger()))
}

func TestListSlotsCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode([]Slot{{ID: "s1", Date: "2026-09-05", Time: "14:00", Available: true}})
	}))
	defer srv.Close()

	c := newBookingClient(t, srv.URL)
	slots, err := c.ListSlots(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "s1", slots[0].ID)

	_, err = c.ListSlots(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAvailableFilterUsesDistinctKey(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		json.NewEncoder(w).Encode([]Slot{})
	}))
	defer srv.Close()

	c := newBookingClient(t, srv.URL)
	_, err := c.ListSlots(context.Background(), false)
	require.NoError(t, err)
	_, err = c.ListSlots(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "", queries[0])
	assert.Equal(t, "available=true", queries[1])
}

func TestBookInvalidatesSlotCache(t *testing.T) {
	var listCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/slots", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		json.NewEncoder(w).Encode([]Slot{{ID: "s1", Available: listCalls.Load() == 1}})
	})
	mux.HandleFunc("POST /api/appointments", func(w http.ResponseWriter, r *http.Request) {
		var req BookingRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(Appointment{ID: "a1", SlotID: req.SlotID, Service: req.Service, Status: StatusPending})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newBookingClient(t, srv.URL)
	_, err := c.ListSlots(context.Background(), false)
	require.NoError(t, err)

	appt, err := c.Book(context.Background(), BookingRequest{SlotID: "s1", Service: "Mariage"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, appt.Status)

	// The next list must refetch, not serve the cached copy.
	slots, err := c.ListSlots(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), listCalls.Load())
	assert.False(t, slots[0].Available)
}

func TestBookFailurePassesErrorThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Ce créneau n'est plus disponible"}`))
	}))
	defer srv.Close()

	c := newBookingClient(t, srv.URL)
	_, err := c.Book(context.Background(), BookingRequest{SlotID: "gone"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))
	assert.Equal(t, "Ce créneau n'est plus disponible", api.DetailOf(err))
}

func TestUpdateAppointmentStatusInvalidates(t *testing.T) {
	var listCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/appointments", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		json.NewEncoder(w).Encode([]Appointment{{ID: "a1", Status: StatusPending}})
	})
	mux.HandleFunc("PUT /api/appointments/a1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Appointment{ID: "a1", Status: StatusConfirmed})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newBookingClient(t, srv.URL)
	_, err := c.ListMyAppointments(context.Background())
	require.NoError(t, err)

	appt, err := c.UpdateAppointmentStatus(context.Background(), "a1", StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, appt.Status)

	_, err = c.ListMyAppointments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), listCalls.Load())
}

func TestReviewModeration(t *testing.T) {
	var reviewCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/reviews", func(w http.ResponseWriter, r *http.Request) {
		reviewCalls.Add(1)
		json.NewEncoder(w).Encode([]Review{})
	})
	mux.HandleFunc("PUT /api/reviews/r1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Review{ID: "r1", Approved: true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newBookingClient(t, srv.URL)
	_, err := c.ListReviews(context.Background())
	require.NoError(t, err)

	review, err := c.ApproveReview(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, review.Approved)

	_, err = c.ListReviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), reviewCalls.Load())
}

func TestPlanStoreTakeClears(t *testing.T) {
	ctx := context.Background()
	state, err := cache.NewFile(filepath.Join(t.TempDir(), "state.bin"))
	require.NoError(t, err)
	defer state.Close()

	p := NewPlanStore(state)
	require.NoError(t, p.Select(ctx, Plan{Name: "Mariage", Price: "20€"}))

	plan, found, err := p.Take(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Mariage", plan.Name)

	_, found, err = p.Take(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}
