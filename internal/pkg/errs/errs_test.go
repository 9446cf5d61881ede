//go:build unit

package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"tablebook/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	sentinel := errs.New("invalid time slot")
	cause := errs.New("time is not aligned to the slot grid")

	t.Run("mark is visible to errors.Is", func(t *testing.T) {
		err := errs.Mark(cause, sentinel)
		assert.ErrorIs(t, err, sentinel)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("mark survives further wrapping", func(t *testing.T) {
		err := errs.Wrap(errs.Mark(cause, sentinel), "creating reservation")
		assert.ErrorIs(t, err, sentinel)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("stacked marks are all visible", func(t *testing.T) {
		other := errs.New("database operation failed")
		err := errs.Mark(errs.Mark(cause, sentinel), other)
		assert.ErrorIs(t, err, sentinel)
		assert.ErrorIs(t, err, other)
	})

	t.Run("nil cause returns the mark itself", func(t *testing.T) {
		err := errs.Mark(nil, sentinel)
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("message keeps both mark and cause", func(t *testing.T) {
		err := errs.Mark(cause, sentinel)
		assert.Equal(t, fmt.Sprintf("%s: %s", sentinel, cause), err.Error())
	})

	t.Run("unrelated sentinel does not match", func(t *testing.T) {
		err := errs.Mark(cause, sentinel)
		assert.False(t, errors.Is(err, errs.New("invalid time slot")))
	})
}
