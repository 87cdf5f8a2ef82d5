package services

import (
	"strings"
	"testing"

	"wagyu_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCommission(t *testing.T) {
	tests := []struct {
		name           string
		amount         float64
		paymentType    models.PaymentType
		wantCommission float64
		wantRate       float64
	}{
		{"subscription payment", 100, models.PaymentTypeSubscription, 30, 0.30},
		{"one-time payment", 100, models.PaymentTypeOneTime, 20, 0.20},
		{"small payment hits the floor", 2, models.PaymentTypeSubscription, 1.00, 0.30},
		{"trial earns nothing", 100, models.PaymentTypeTrial, 0, 0},
		{"unknown type earns nothing", 100, models.PaymentType("gift_card"), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commission, rate := CalculateCommission(tt.amount, tt.paymentType)
			assert.InDelta(t, tt.wantCommission, commission, 1e-9)
			assert.InDelta(t, tt.wantRate, rate, 1e-9)
		})
	}
}

func TestRandomCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code, err := randomCode(8)
		require.NoError(t, err)
		assert.Len(t, code, 8)

		// The alphabet excludes look-alike characters.
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, ch), "unexpected character %q in code %s", ch, code)
		}
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")

		seen[code] = true
	}

	// 50 draws from a 32^8 space should never collide.
	assert.Len(t, seen, 50)
}
