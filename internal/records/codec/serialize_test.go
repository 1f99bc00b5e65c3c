package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeValue_RoundTrip(t *testing.T) {
	instant := time.Date(1984, 3, 12, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"string", "123-45-6789", "123-45-6789"},
		{"empty string", "", ""},
		{"string slice", []string{"hypertension", "asthma"}, []string{"hypertension", "asthma"}},
		{"empty slice", []string{}, []string{}},
		{"bool", true, true},
		{"int normalized to int64", 42, int64(42)},
		{"int64", int64(-7), int64(-7)},
		{"float64", 98.6, 98.6},
		{"time in UTC", instant, instant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := serializeValue(tt.value)
			require.NoError(t, err)

			got, err := deserializeValue(data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSerializeValue_Canonical(t *testing.T) {
	// Deterministic ciphertext depends on byte-stable serialization.
	a, err := serializeValue("Doe")
	require.NoError(t, err)
	b, err := serializeValue("Doe")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Non-UTC times normalize to the same instant.
	est := time.FixedZone("EST", -5*3600)
	utc, err := serializeValue(time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	zoned, err := serializeValue(time.Date(2024, 1, 2, 10, 0, 0, 0, est))
	require.NoError(t, err)
	assert.Equal(t, utc, zoned)
}

func TestSerializeValue_Unsupported(t *testing.T) {
	_, err := serializeValue(map[string]string{"k": "v"})
	assert.ErrorIs(t, err, ErrUnsupportedValueType)

	_, err = serializeValue(struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedValueType)
}

func TestDeserializeValue_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown tag", []byte{0x7f, 1, 2}},
		{"short int64", []byte{tagInt64, 1, 2, 3}},
		{"short time", []byte{tagTime, 1}},
		{"bad bool", []byte{tagBool, 2}},
		{"truncated slice", []byte{tagStringSlice, 2, 3, 'a'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := deserializeValue(tt.data)
			assert.Error(t, err)
		})
	}
}
