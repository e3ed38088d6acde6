package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		for _, s := range []string{"PENDING", "PAID", "DELIVERED", "CANCELLED"} {
			st, err := ParseStatus(s)
			require.NoError(t, err)
			assert.Equal(t, s, st.String())
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := ParseStatus("SHIPPED")
		assert.ErrorIs(t, err, ErrInvalidStatus)

		_, err = ParseStatus("paid")
		assert.ErrorIs(t, err, ErrInvalidStatus)

		_, err = ParseStatus("")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestInitial(t *testing.T) {
	assert.Equal(t, StatusPending, Initial())
}

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusPaid, StatusDelivered, StatusCancelled}

	allowed := map[[2]Status]bool{
		{StatusPending, StatusPaid}:      true,
		{StatusPending, StatusCancelled}: true,
		{StatusPaid, StatusDelivered}:    true,
	}

	for _, from := range all {
		for _, to := range all {
			if from == to {
				continue
			}
			got := CanTransition(from, to)
			assert.Equal(t, allowed[[2]Status{from, to}], got, "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesRejectAll(t *testing.T) {
	for _, terminal := range []Status{StatusDelivered, StatusCancelled} {
		for _, to := range []Status{StatusPending, StatusPaid, StatusDelivered, StatusCancelled} {
			if to == terminal {
				continue
			}
			assert.False(t, CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
}
