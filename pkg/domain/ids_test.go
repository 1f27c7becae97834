package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "isdialogmelding/pkg/domain-errors"
)

func TestParsePersonident(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Attack vectors
		{"SQL injection attempt", "'; DROP TABLE behandler;--", true},
		{"Null byte injection", "1234567\x00891", true},
		{"Oversized input", strings.Repeat("1", 1000), true},

		// Edge cases
		{"Empty string", "", true},
		{"Ten digits", "1234567891", true},
		{"Twelve digits", "123456789123", true},
		{"Letters", "1234567891a", true},
		{"Surrounding whitespace is trimmed", " 12345678912 ", false},

		// Valid
		{"Eleven digits", "12345678912", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePersonident(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Personident("12345678912"), got)
		})
	}
}

func TestParsePartnerID(t *testing.T) {
	id, err := ParsePartnerID("321")
	require.NoError(t, err)
	assert.Equal(t, PartnerID(321), id)
	assert.Equal(t, "321", id.String())

	for _, input := range []string{"", "0", "-4", "abc"} {
		t.Run("rejects "+input, func(t *testing.T) {
			_, err := ParsePartnerID(input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestParseRegistryIDs(t *testing.T) {
	her, err := ParseHerID("404")
	require.NoError(t, err)
	assert.Equal(t, HerID("404"), her)

	hpr, err := ParseHprID("9087654")
	require.NoError(t, err)
	assert.Equal(t, HprID("9087654"), hpr)

	_, err = ParseHerID("")
	assert.Error(t, err)
	_, err = ParseHprID("12a")
	assert.Error(t, err)
}

// TestParseUUIDTypes_ConsistentBehavior ensures all UUID-backed ids share parsing rules.
func TestParseUUIDTypes_ConsistentBehavior(t *testing.T) {
	valid := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		ref, errRef := ParseBehandlerRef(valid)
		msg, errMsg := ParseMessageID(valid)
		require.NoError(t, errRef)
		require.NoError(t, errMsg)
		assert.Equal(t, valid, ref.String())
		assert.Equal(t, valid, msg.String())
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String(), "FiktivTestdata0001"} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errRef := ParseBehandlerRef(input)
			_, errMsg := ParseMessageID(input)
			require.Error(t, errRef)
			require.Error(t, errMsg)
			assert.True(t, dErrors.HasCode(errMsg, dErrors.CodeInvalidInput))
		})
	}
}
