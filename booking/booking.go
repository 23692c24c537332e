// Package booking is the typed client for slots, appointments and reviews.
// List reads are memoized through the TTL cache with short windows;
// mutations invalidate the affected keys so the next read is fresh.
package booking

import (
	"context"
	"time"

	"github.com/hennalash/go-client/api"
	"github.com/hennalash/go-client/cache"
	"github.com/hennalash/go-client/logger"
)

// Slot is a bookable time window published by the studio.
type Slot struct {
	ID        string `json:"id" msgpack:"id"`
	Date      string `json:"date" msgpack:"date"`
	Time      string `json:"time" msgpack:"time"`
	Available bool   `json:"available" msgpack:"available"`
}

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Appointment is a client's booking of a slot.
type Appointment struct {
	ID      string `json:"id" msgpack:"id"`
	SlotID  string `json:"slot_id" msgpack:"slot_id"`
	Service string `json:"service" msgpack:"service"`
	Note    string `json:"note,omitempty" msgpack:"note"`
	Status  string `json:"status" msgpack:"status"`
	Slot    *Slot  `json:"slot,omitempty" msgpack:"slot"`
}

// Review is a client testimonial; only approved reviews are public.
type Review struct {
	ID       string `json:"id" msgpack:"id"`
	Name     string `json:"name" msgpack:"name"`
	Rating   int    `json:"rating" msgpack:"rating"`
	Comment  string `json:"comment" msgpack:"comment"`
	Approved bool   `json:"approved" msgpack:"approved"`
}

// Cache keys and TTLs for memoized list reads.
const (
	keySlots            = "booking.slots"
	keySlotsAvailable   = "booking.slots.available"
	keyMyAppointments   = "booking.appointments.mine"
	keyAllAppointments  = "booking.appointments.all"
	keyApprovedReviews  = "booking.reviews.approved"
	slotsTTL            = 30 * time.Second
	appointmentsTTL     = time.Minute
	reviewsTTL          = 5 * time.Minute
)

// Client wraps the booking endpoints.
type Client struct {
	api    *api.Client
	cache  cache.Cache
	group  cache.Group
	logger logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to a console logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a booking client memoizing list reads in the given cache.
func New(apiClient *api.Client, memo cache.Cache, opts ...Option) *Client {
	c := &Client{api: apiClient, cache: memo}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.NewConsoleLogger()
	}
	c.logger = c.logger.WithPrefix("booking")
	return c
}

func (c *Client) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if _, err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn("failed to invalidate %s: %v", key, err)
		}
	}
}

// ListSlots returns the published slots, optionally only the available
// ones. Concurrent cold reads for the same key share one fetch.
func (c *Client) ListSlots(ctx context.Context, onlyAvailable bool) ([]Slot, error) {
	key, path := keySlots, "/api/slots"
	if onlyAvailable {
		key, path = keySlotsAvailable, "/api/slots?available=true"
	}
	return cache.Fetch(ctx, cache.FetchConfig{Key: key, TTL: slotsTTL, Group: &c.group}, c.cache,
		func(ctx context.Context) ([]Slot, error) {
			var slots []Slot
			if err := c.api.Get(ctx, path, &slots); err != nil {
				return nil, err
			}
			return slots, nil
		})
}

// CreateSlot publishes a new slot (admin).
func (c *Client) CreateSlot(ctx context.Context, date, timeOfDay string) (Slot, error) {
	var slot Slot
	if err := c.api.Post(ctx, "/api/slots", map[string]string{"date": date, "time": timeOfDay}, &slot); err != nil {
		return Slot{}, err
	}
	c.invalidate(ctx, keySlots, keySlotsAvailable)
	return slot, nil
}

// DeleteSlot removes a slot (admin).
func (c *Client) DeleteSlot(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/api/slots/"+id); err != nil {
		return err
	}
	c.invalidate(ctx, keySlots, keySlotsAvailable)
	return nil
}

// BookingRequest is the payload for creating an appointment.
type BookingRequest struct {
	SlotID  string `json:"slot_id"`
	Service string `json:"service"`
	Note    string `json:"note,omitempty"`
}

// Book creates an appointment on the given slot.
func (c *Client) Book(ctx context.Context, req BookingRequest) (Appointment, error) {
	var appt Appointment
	if err := c.api.Post(ctx, "/api/appointments", req, &appt); err != nil {
		return Appointment{}, err
	}
	c.invalidate(ctx, keySlots, keySlotsAvailable, keyMyAppointments, keyAllAppointments)
	c.logger.Info("booked slot %s (%s)", req.SlotID, req.Service)
	return appt, nil
}

// ListMyAppointments returns the authenticated client's appointments.
func (c *Client) ListMyAppointments(ctx context.Context) ([]Appointment, error) {
	return cache.Fetch(ctx, cache.FetchConfig{Key: keyMyAppointments, TTL: appointmentsTTL, Group: &c.group}, c.cache,
		func(ctx context.Context) ([]Appointment, error) {
			var appts []Appointment
			if err := c.api.Get(ctx, "/api/appointments", &appts); err != nil {
				return nil, err
			}
			return appts, nil
		})
}

// ListAllAppointments returns every appointment (admin).
func (c *Client) ListAllAppointments(ctx context.Context) ([]Appointment, error) {
	return cache.Fetch(ctx, cache.FetchConfig{Key: keyAllAppointments, TTL: appointmentsTTL, Group: &c.group}, c.cache,
		func(ctx context.Context) ([]Appointment, error) {
			var appts []Appointment
			if err := c.api.Get(ctx, "/api/appointments?all=true", &appts); err != nil {
				return nil, err
			}
			return appts, nil
		})
}

// UpdateAppointmentStatus confirms or cancels an appointment (admin).
func (c *Client) UpdateAppointmentStatus(ctx context.Context, id, status string) (Appointment, error) {
	var appt Appointment
	if err := c.api.Put(ctx, "/api/appointments/"+id, map[string]string{"status": status}, &appt); err != nil {
		return Appointment{}, err
	}
	c.invalidate(ctx, keyMyAppointments, keyAllAppointments)
	return appt, nil
}

// CancelAppointment deletes an appointment and frees its slot.
func (c *Client) CancelAppointment(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/api/appointments/"+id); err != nil {
		return err
	}
	c.invalidate(ctx, keySlots, keySlotsAvailable, keyMyAppointments, keyAllAppointments)
	return nil
}

// ListReviews returns the approved, public reviews.
func (c *Client) ListReviews(ctx context.Context) ([]Review, error) {
	return cache.Fetch(ctx, cache.FetchConfig{Key: keyApprovedReviews, TTL: reviewsTTL, Group: &c.group}, c.cache,
		func(ctx context.Context) ([]Review, error) {
			var reviews []Review
			if err := c.api.Get(ctx, "/api/reviews", &reviews); err != nil {
				return nil, err
			}
			return reviews, nil
		})
}

// SubmitReview sends a testimonial for moderation.
func (c *Client) SubmitReview(ctx context.Context, name string, rating int, comment string) (Review, error) {
	var review Review
	payload := map[string]any{"name": name, "rating": rating, "comment": comment}
	if err := c.api.Post(ctx, "/api/reviews", payload, &review); err != nil {
		return Review{}, err
	}
	return review, nil
}

// ApproveReview publishes a pending review (admin).
func (c *Client) ApproveReview(ctx context.Context, id string) (Review, error) {
	var review Review
	if err := c.api.Put(ctx, "/api/reviews/"+id, map[string]bool{"approved": true}, &review); err != nil {
		return Review{}, err
	}
	c.invalidate(ctx, keyApprovedReviews)
	return review, nil
}

// DeleteReview rejects a review (admin).
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, "/api/reviews/"+id); err != nil {
		return err
	}
	c.invalidate(ctx, keyApprovedReviews)
	return nil
}
