//go:build unit

package customer_test

import (
	"testing"

	"tablebook/internal/domain/customer"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"090-1234-5678", "09012345678"},
		{"(03) 1234 5678", "0312345678"},
		{"+81 90 1234 5678", "819012345678"},
		{"no digits here", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, customer.NormalizePhone(tc.in), "input %q", tc.in)
	}
}

func TestPhoneMatches(t *testing.T) {
	cases := []struct {
		name   string
		stored string
		query  string
		want   bool
	}{
		{name: "exact with formatting differences", stored: "090-1234-5678", query: "09012345678", want: true},
		{name: "partial entry matches stored", stored: "090-1234-5678", query: "1234", want: true},
		{name: "stored shorter than query", stored: "1234", query: "090-1234-5678", want: true},
		{name: "different numbers", stored: "090-1234-5678", query: "080-9999-0000", want: false},
		{name: "empty query never matches", stored: "090-1234-5678", query: "--", want: false},
		{name: "empty stored never matches", stored: "", query: "090", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, customer.PhoneMatches(tc.stored, tc.query))
		})
	}
}

func TestBestMatch(t *testing.T) {
	restaurantID := uuid.New()
	mk := func(name, phone string) *customer.Customer {
		c, err := customer.NewCustomer(restaurantID, name, phone)
		require.NoError(t, err)
		return c
	}

	partial := mk("Partial", "090-1234")
	exact := mk("Exact", "090-1234-5678")
	other := mk("Other", "080-0000-1111")

	t.Run("exact normalized match wins over earlier containment match", func(t *testing.T) {
		got := customer.BestMatch([]*customer.Customer{partial, exact, other}, "09012345678")
		require.NotNil(t, got)
		assert.Equal(t, exact.ID(), got.ID())
	})

	t.Run("first containment match otherwise", func(t *testing.T) {
		got := customer.BestMatch([]*customer.Customer{partial, exact, other}, "1234")
		require.NotNil(t, got)
		assert.Equal(t, partial.ID(), got.ID())
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, customer.BestMatch([]*customer.Customer{partial, exact}, "555"))
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Nil(t, customer.BestMatch([]*customer.Customer{partial}, "-"))
	})
}

func TestCustomer_Segment(t *testing.T) {
	fresh, err := customer.NewCustomer(uuid.New(), "Fresh", "090-1111-2222")
	require.NoError(t, err)
	assert.Equal(t, "new", fresh.Segment())
}
