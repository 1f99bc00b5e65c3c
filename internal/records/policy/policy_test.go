package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
	recordsDomain "github.com/mrlynn/securehealth-sub006/internal/records/domain"
)

func TestNewRegistry(t *testing.T) {
	t.Run("default patient policy is valid", func(t *testing.T) {
		registry, err := NewRegistry(DefaultPatientPolicy())
		require.NoError(t, err)
		assert.Equal(t, []string{recordsDomain.RecordTypePatient}, registry.RecordTypes())
	})

	t.Run("shared key without opt-in is rejected", func(t *testing.T) {
		_, err := NewRegistry(map[string]map[string]Entry{
			"patient": {
				"insurance_provider": {Treatment: TreatmentRandom, KeyName: "patient_insurance_key"},
				"insurance_number":   {Treatment: TreatmentRandom, KeyName: "patient_insurance_key"},
			},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("shared key with one-sided opt-in is rejected", func(t *testing.T) {
		_, err := NewRegistry(map[string]map[string]Entry{
			"patient": {
				"insurance_provider": {
					Treatment: TreatmentRandom, KeyName: "patient_insurance_key", AllowSharedKey: true,
				},
				"insurance_number": {Treatment: TreatmentRandom, KeyName: "patient_insurance_key"},
			},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("plaintext entry with key name is rejected", func(t *testing.T) {
		_, err := NewRegistry(map[string]map[string]Entry{
			"patient": {"id": {Treatment: TreatmentPlaintext, KeyName: "patient_id_key"}},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("encrypted entry without key name is rejected", func(t *testing.T) {
		_, err := NewRegistry(map[string]map[string]Entry{
			"patient": {"ssn": {Treatment: TreatmentRandom}},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("invalid key name is rejected", func(t *testing.T) {
		_, err := NewRegistry(map[string]map[string]Entry{
			"patient": {"ssn": {Treatment: TreatmentRandom, KeyName: "Patient-SSN"}},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("unknown treatment is rejected", func(t *testing.T) {
		_, err := NewRegistry(map[string]map[string]Entry{
			"patient": {"ssn": {Treatment: Treatment("tokenized"), KeyName: "patient_ssn_key"}},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestRegistry_Lookup(t *testing.T) {
	registry, err := NewRegistry(DefaultPatientPolicy())
	require.NoError(t, err)

	entry, ok := registry.Lookup(recordsDomain.RecordTypePatient, recordsDomain.FieldLastName)
	require.True(t, ok)
	assert.Equal(t, TreatmentDeterministic, entry.Treatment)
	assert.Equal(t, "patient_last_name_key", entry.KeyName)

	entry, ok = registry.Lookup(recordsDomain.RecordTypePatient, recordsDomain.FieldSSN)
	require.True(t, ok)
	assert.Equal(t, TreatmentRandom, entry.Treatment)

	entry, ok = registry.Lookup(recordsDomain.RecordTypePatient, recordsDomain.FieldID)
	require.True(t, ok)
	assert.Equal(t, TreatmentPlaintext, entry.Treatment)

	_, ok = registry.Lookup(recordsDomain.RecordTypePatient, "nickname")
	assert.False(t, ok)

	_, ok = registry.Lookup("appointment", "date")
	assert.False(t, ok)
}

func TestRegistry_Catalog(t *testing.T) {
	registry, err := NewRegistry(DefaultPatientPolicy())
	require.NoError(t, err)

	catalog := registry.Catalog(recordsDomain.RecordTypePatient)
	require.Len(t, catalog, 15)

	byField := make(map[string]CatalogEntry, len(catalog))
	for i, entry := range catalog {
		byField[entry.FieldName] = entry
		if i > 0 {
			assert.Less(t, catalog[i-1].FieldName, entry.FieldName, "catalog must be sorted")
		}
	}

	assert.Equal(t, TreatmentDeterministic, byField["email"].Treatment)
	assert.Equal(t, TreatmentRandom, byField["ssn"].Treatment)
	assert.Equal(t, "patient_insurance_key", byField["insurance_number"].KeyName)
	assert.Equal(t, "patient_insurance_key", byField["insurance_provider"].KeyName)

	assert.Nil(t, registry.Catalog("appointment"))
}
