package customer

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName    = errors.New("customer name is required")
	ErrInvalidPhone = errors.New("phone number must contain digits")
)

// Customer is a per-restaurant guest profile. Visit/no-show/cancellation
// counters are maintained by reservation lifecycle transitions, never
// edited directly by staff.
type Customer struct {
	id                uuid.UUID
	restaurantID      uuid.UUID
	name              string
	phone             string
	tags              []string
	totalVisits       int
	noShowCount       int
	cancellationCount int
	lastVisitAt       *time.Time
	notes             string
	createdAt         time.Time
	updatedAt         time.Time
}

func NewCustomer(restaurantID uuid.UUID, name, phone string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if NormalizePhone(phone) == "" {
		return nil, ErrInvalidPhone
	}

	return &Customer{
		id:           uuid.New(),
		restaurantID: restaurantID,
		name:         name,
		phone:        phone,
	}, nil
}

func ReconstructCustomer(
	id, restaurantID uuid.UUID,
	name, phone string,
	tags []string,
	totalVisits, noShowCount, cancellationCount int,
	lastVisitAt *time.Time,
	notes string,
	createdAt, updatedAt time.Time,
) *Customer {
	return &Customer{
		id:                id,
		restaurantID:      restaurantID,
		name:              name,
		phone:             phone,
		tags:              tags,
		totalVisits:       totalVisits,
		noShowCount:       noShowCount,
		cancellationCount: cancellationCount,
		lastVisitAt:       lastVisitAt,
		notes:             notes,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (c *Customer) UpdateProfile(name, notes string, tags []string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	c.name = name
	c.notes = notes
	c.tags = dedupeTags(tags)
	c.updatedAt = now
	return nil
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// Segment buckets the customer for analytics: new (no visits yet),
// at_risk (no-shows outnumber visits), frequent (5+ visits), returning.
func (c *Customer) Segment() string {
	return SegmentOf(c.totalVisits, c.noShowCount)
}

func SegmentOf(totalVisits, noShowCount int) string {
	switch {
	case totalVisits == 0 && noShowCount == 0:
		return "new"
	case noShowCount > totalVisits:
		return "at_risk"
	case totalVisits >= 5:
		return "frequent"
	default:
		return "returning"
	}
}

func (c *Customer) ID() uuid.UUID           { return c.id }
func (c *Customer) RestaurantID() uuid.UUID { return c.restaurantID }
func (c *Customer) Name() string            { return c.name }
func (c *Customer) Phone() string           { return c.phone }
func (c *Customer) Tags() []string          { return c.tags }
func (c *Customer) TotalVisits() int        { return c.totalVisits }
func (c *Customer) NoShowCount() int        { return c.noShowCount }
func (c *Customer) CancellationCount() int  { return c.cancellationCount }
func (c *Customer) LastVisitAt() *time.Time { return c.lastVisitAt }
func (c *Customer) Notes() string           { return c.notes }
func (c *Customer) CreatedAt() time.Time    { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time    { return c.updatedAt }
