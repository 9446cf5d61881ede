package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a staff account. Each account belongs to exactly one restaurant;
// the restaurant ID on the account is the tenant every request is scoped to.
type User struct {
	id           uuid.UUID
	restaurantID uuid.UUID
	email        Email
	passwordHash string
	name         string
	role         Role
	lastLogin    *time.Time
	isActive     bool
	createdAt    time.Time
	updatedAt    time.Time
}

func NewUser(restaurantID uuid.UUID, email Email, passwordHash, name string, role Role) *User {
	return &User{
		id:           uuid.New(),
		restaurantID: restaurantID,
		email:        email,
		passwordHash: passwordHash,
		name:         name,
		role:         role,
		isActive:     true,
	}
}

func ReconstructUser(
	id, restaurantID uuid.UUID,
	email Email,
	passwordHash, name string,
	role Role,
	lastLogin *time.Time,
	isActive bool,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:           id,
		restaurantID: restaurantID,
		email:        email,
		passwordHash: passwordHash,
		name:         name,
		role:         role,
		lastLogin:    lastLogin,
		isActive:     isActive,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (u *User) ID() uuid.UUID           { return u.id }
func (u *User) RestaurantID() uuid.UUID { return u.restaurantID }
func (u *User) Email() Email            { return u.email }
func (u *User) PasswordHash() string    { return u.passwordHash }
func (u *User) Name() string            { return u.name }
func (u *User) Role() Role              { return u.role }
func (u *User) LastLogin() *time.Time   { return u.lastLogin }
func (u *User) IsActive() bool          { return u.isActive }
func (u *User) CreatedAt() time.Time    { return u.createdAt }
func (u *User) UpdatedAt() time.Time    { return u.updatedAt }

type Email struct {
	value string
}

func NewEmail(value string) (Email, error) {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" || !strings.Contains(v, "@") {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: v}, nil
}

func (e Email) String() string {
	return e.value
}
