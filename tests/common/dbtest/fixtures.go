//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func DefaultRestaurantID(t *testing.T, db DBLike) uuid.UUID {
	t.Helper()

	var restaurantID uuid.UUID
	err := db.QueryRow(context.Background(),
		"SELECT id FROM restaurants WHERE name = 'Default Restaurant' LIMIT 1").Scan(&restaurantID)
	require.NoError(t, err)
	return restaurantID
}

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	restaurantID := DefaultRestaurantID(t, db)

	ctx := context.Background()
	// bcrypt hash of "password123"
	passwordHash := "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."
	tag, err := db.Exec(ctx, "INSERT INTO users (id, restaurant_id, email, password_hash, name, role, is_active) VALUES ($1, $2, $3, $4, $5, $6, true) ON CONFLICT (email) DO NOTHING",
		userID, restaurantID, email, passwordHash, "Test User", role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1 AND is_active = true", email).Scan(&userID)
	}

	return userID
}

func CreateTestRestaurant(t *testing.T, db DBLike, name string) uuid.UUID {
	t.Helper()

	restaurantID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO restaurants (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING", restaurantID, name)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM restaurants WHERE name = $1", name).Scan(&restaurantID)
	}

	return restaurantID
}

func CreateTestTable(t *testing.T, db DBLike, name string, capacity int) uuid.UUID {
	t.Helper()

	tableID := uuid.New()
	restaurantID := DefaultRestaurantID(t, db)

	_, err := db.Exec(context.Background(),
		"INSERT INTO tables (id, restaurant_id, name, capacity, shape) VALUES ($1, $2, $3, $4, 'square')",
		tableID, restaurantID, name, capacity)
	require.NoError(t, err)

	return tableID
}

func CreateTestCustomer(t *testing.T, db DBLike, name, phone string) uuid.UUID {
	t.Helper()

	customerID := uuid.New()
	restaurantID := DefaultRestaurantID(t, db)

	_, err := db.Exec(context.Background(),
		"INSERT INTO customers (id, restaurant_id, name, phone) VALUES ($1, $2, $3, $4)",
		customerID, restaurantID, name, phone)
	require.NoError(t, err)

	return customerID
}

func CreateTestReservation(t *testing.T, db DBLike, tableID uuid.UUID, customerID *uuid.UUID, guestName string, partySize int, start, end time.Time, status string) uuid.UUID {
	t.Helper()

	reservationID := uuid.New()
	restaurantID := DefaultRestaurantID(t, db)

	_, err := db.Exec(context.Background(),
		`INSERT INTO reservations (id, restaurant_id, table_id, customer_id, guest_name, party_size, start_time, end_time, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		reservationID, restaurantID, tableID, customerID, guestName, partySize, start, end, status)
	require.NoError(t, err)

	return reservationID
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO restaurants (id, name) VALUES
		    (gen_random_uuid(), 'Default Restaurant'),
		    (gen_random_uuid(), 'Second Restaurant')
		ON CONFLICT DO NOTHING;
	`)
	if err != nil {
		return err
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
