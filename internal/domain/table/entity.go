package table

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName       = errors.New("table name is required")
	ErrInvalidCapacity = errors.New("table capacity must be positive")
	ErrInvalidShape    = errors.New("invalid table shape")
)

type Shape string

const (
	ShapeSquare Shape = "square"
	ShapeRound  Shape = "round"
	ShapeBooth  Shape = "booth"
	ShapeBar    Shape = "bar"
)

func (s Shape) IsValid() bool {
	switch s {
	case ShapeSquare, ShapeRound, ShapeBooth, ShapeBar:
		return true
	default:
		return false
	}
}

func NewShape(s string) (Shape, error) {
	shape := Shape(s)
	if !shape.IsValid() {
		return "", ErrInvalidShape
	}
	return shape, nil
}

// Table is a physical seat group on the floor plan. Deletion is blocked while
// any blocking-status reservation still references it.
type Table struct {
	id           uuid.UUID
	restaurantID uuid.UUID
	name         string
	capacity     int
	shape        Shape
	createdAt    time.Time
	updatedAt    time.Time
}

func NewTable(restaurantID uuid.UUID, name string, capacity int, shape Shape) (*Table, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if !shape.IsValid() {
		return nil, ErrInvalidShape
	}

	return &Table{
		id:           uuid.New(),
		restaurantID: restaurantID,
		name:         name,
		capacity:     capacity,
		shape:        shape,
	}, nil
}

func ReconstructTable(id, restaurantID uuid.UUID, name string, capacity int, shape Shape, createdAt, updatedAt time.Time) *Table {
	return &Table{
		id:           id,
		restaurantID: restaurantID,
		name:         name,
		capacity:     capacity,
		shape:        shape,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (t *Table) Rename(name string, capacity int, shape Shape, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	if !shape.IsValid() {
		return ErrInvalidShape
	}
	t.name = name
	t.capacity = capacity
	t.shape = shape
	t.updatedAt = now
	return nil
}

func (t *Table) ID() uuid.UUID           { return t.id }
func (t *Table) RestaurantID() uuid.UUID { return t.restaurantID }
func (t *Table) Name() string            { return t.name }
func (t *Table) Capacity() int           { return t.capacity }
func (t *Table) Shape() Shape            { return t.shape }
func (t *Table) CreatedAt() time.Time    { return t.createdAt }
func (t *Table) UpdatedAt() time.Time    { return t.updatedAt }
