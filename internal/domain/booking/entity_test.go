package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooking_AddLine(t *testing.T) {
	b := NewBooking("emp-1")

	b.AddLine("seat-1", "cust-1", decimal.RequireFromString("50.00"), decimal.RequireFromString("5.00"))
	b.AddLine("seat-2", "cust-2", decimal.RequireFromString("89.60"), decimal.RequireFromString("8.96"))

	assert.Len(t, b.Lines, 2)
	assert.Equal(t, "139.60", b.TotalAmount.StringFixed(2))
	assert.Equal(t, "13.96", b.TotalTax.StringFixed(2))
	assert.True(t, b.Lines[0].Active)
	assert.Equal(t, []string{"seat-1", "seat-2"}, b.SeatIDs())
}

func TestBooking_Cancel(t *testing.T) {
	t.Run("キャンセルで明細が無効化される", func(t *testing.T) {
		b := NewBooking("emp-1")
		b.AddLine("seat-1", "cust-1", decimal.RequireFromString("50.00"), decimal.RequireFromString("5.00"))

		at := time.Now()
		refund := decimal.RequireFromString("50.00")
		require.NoError(t, b.Cancel(refund, at))

		assert.True(t, b.IsCancelled())
		assert.Equal(t, StatusCancelled, b.Status)
		require.NotNil(t, b.CancellationDate)
		assert.Equal(t, at, *b.CancellationDate)
		require.NotNil(t, b.RefundAmount)
		assert.Equal(t, "50.00", b.RefundAmount.StringFixed(2))
		for _, l := range b.Lines {
			assert.False(t, l.Active)
		}
	})

	t.Run("二重キャンセルはエラー", func(t *testing.T) {
		b := NewBooking("emp-1")
		b.AddLine("seat-1", "cust-1", decimal.RequireFromString("50.00"), decimal.RequireFromString("5.00"))

		require.NoError(t, b.Cancel(decimal.Zero, time.Now()))
		assert.ErrorIs(t, b.Cancel(decimal.Zero, time.Now()), ErrAlreadyCancelled)
	})
}

func TestBooking_Validate(t *testing.T) {
	t.Run("従業員IDなし", func(t *testing.T) {
		b := NewBooking("")
		b.AddLine("seat-1", "cust-1", decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, b.Validate(), ErrEmployeeIDRequired)
	})

	t.Run("明細なし", func(t *testing.T) {
		b := NewBooking("emp-1")
		assert.ErrorIs(t, b.Validate(), ErrNoLines)
	})
}

func TestSeatConflictError(t *testing.T) {
	err := &SeatConflictError{SeatIDs: []string{"seat-1", "seat-2"}}
	assert.Contains(t, err.Error(), "seat-1")
	assert.Contains(t, err.Error(), "seat-2")
}
