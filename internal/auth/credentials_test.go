package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{name: "simple", password: "hunter22"},
		{name: "unicode", password: "pässwörd✓"},
		{name: "empty", password: ""},
		{name: "longer than 72 bytes", password: strings.Repeat("x", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.HashPassword(tt.password)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, h.VerifyPassword(hash, tt.password))
			assert.False(t, h.VerifyPassword(hash, tt.password+"!"))
		})
	}
}

func TestHasher_LongPasswordsDifferPastLimit(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	base := strings.Repeat("a", 80)

	hash, err := h.HashPassword(base + "1")
	require.NoError(t, err)
	assert.False(t, h.VerifyPassword(hash, base+"2"))
}

func TestHasher_Salted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, err := h.HashPassword("same-password")
	require.NoError(t, err)
	b, err := h.HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHasher_MalformedHash(t *testing.T) {
	assert.False(t, NewHasher(bcrypt.MinCost).VerifyPassword("not-a-hash", "whatever"))
}

func TestNewHasher_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
}
