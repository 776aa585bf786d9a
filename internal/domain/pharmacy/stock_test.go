package pharmacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusForQuantity(t *testing.T) {
	tests := []struct {
		total int
		want  StockStatus
	}{
		{0, StatusOutOfStock},
		{1, StatusLowStock},
		{10, StatusLowStock},
		{11, StatusInStock},
		{500, StatusInStock},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, StatusForQuantity(tt.total), "total=%d", tt.total)
	}
}

func TestParseStockStatus(t *testing.T) {
	got, err := ParseStockStatus(" in_stock ")
	require.NoError(t, err)
	require.Equal(t, StatusInStock, got)

	got, err = ParseStockStatus("Low_Stock")
	require.NoError(t, err)
	require.Equal(t, StatusLowStock, got)

	for _, raw := range []string{"", "AVAILABLE", "in stock"} {
		_, err := ParseStockStatus(raw)
		require.ErrorIs(t, err, ErrInvalidStockStatus, "raw=%q", raw)
	}
}

func TestExpiresWithin(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour

	inWindow := &Batch{ExpiryDate: now.Add(10 * 24 * time.Hour)}
	require.True(t, inWindow.ExpiresWithin(window, now))

	beyond := &Batch{ExpiryDate: now.Add(45 * 24 * time.Hour)}
	require.False(t, beyond.ExpiresWithin(window, now))

	alreadyExpired := &Batch{ExpiryDate: now.Add(-time.Hour)}
	require.False(t, alreadyExpired.ExpiresWithin(window, now))
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "paracetamol", NormalizeName("  Paracetamol "))
	require.Equal(t, "amoxicillin 500mg", NormalizeName("AMOXICILLIN 500mg"))
}

func TestPharmacyHasLocation(t *testing.T) {
	require.False(t, (&Pharmacy{}).HasLocation())
	require.True(t, (&Pharmacy{Latitude: 34.05, Longitude: -118.24}).HasLocation())
	require.True(t, (&Pharmacy{Longitude: 151.2}).HasLocation())
}
