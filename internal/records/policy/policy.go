// Package policy holds the static field-protection table: which cryptographic
// treatment each record field receives and which DEK protects it. The table
// is built once at startup, validated, and never mutated afterwards.
package policy

import (
	"sort"

	validation "github.com/jellydator/validation"

	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
	recordsDomain "github.com/mrlynn/securehealth-sub006/internal/records/domain"
	rules "github.com/mrlynn/securehealth-sub006/internal/validation"
)

// Treatment is the cryptographic handling applied to a field.
type Treatment string

const (
	// TreatmentPlaintext stores the field unchanged (timestamps, identifiers).
	TreatmentPlaintext Treatment = "plaintext"
	// TreatmentDeterministic produces reproducible ciphertext, enabling
	// equality search at the cost of leaking value-equality patterns.
	TreatmentDeterministic Treatment = "deterministic"
	// TreatmentRandom produces fresh ciphertext per call; no queries.
	TreatmentRandom Treatment = "random"
)

// Entry is the protection policy for a single field.
type Entry struct {
	Treatment Treatment
	// KeyName is the DEK name for encrypted treatments; empty for plaintext.
	KeyName string
	// AllowSharedKey must be set on every entry that reuses a KeyName already
	// claimed by another field. The default is one DEK per field so a leaked
	// key exposes a single column; sharing is an explicit opt-in.
	AllowSharedKey bool
}

// Registry maps (recordType, fieldName) to protection entries. Lookup misses
// are reported as not configured; the codec treats those fields as plaintext,
// and Catalog makes that default visible to operators.
type Registry struct {
	entries map[string]map[string]Entry
}

// NewRegistry validates the given table and builds a registry from it.
// Validation failures are configuration bugs and abort startup.
func NewRegistry(table map[string]map[string]Entry) (*Registry, error) {
	entries := make(map[string]map[string]Entry, len(table))

	for recordType, fields := range table {
		keyOwners := make(map[string]string)
		recordEntries := make(map[string]Entry, len(fields))

		for fieldName, entry := range fields {
			if err := validateEntry(recordType, fieldName, entry); err != nil {
				return nil, err
			}
			if entry.KeyName != "" {
				if owner, taken := keyOwners[entry.KeyName]; taken {
					ownerEntry := fields[owner]
					if !entry.AllowSharedKey || !ownerEntry.AllowSharedKey {
						return nil, apperrors.Wrapf(
							apperrors.ErrInvalidInput,
							"fields %s.%s and %s.%s share key %q without AllowSharedKey",
							recordType, owner, recordType, fieldName, entry.KeyName,
						)
					}
				} else {
					keyOwners[entry.KeyName] = fieldName
				}
			}
			recordEntries[fieldName] = entry
		}
		entries[recordType] = recordEntries
	}

	return &Registry{entries: entries}, nil
}

func validateEntry(recordType, fieldName string, entry Entry) error {
	switch entry.Treatment {
	case TreatmentPlaintext:
		if entry.KeyName != "" {
			return apperrors.Wrapf(
				apperrors.ErrInvalidInput,
				"plaintext field %s.%s must not name a key", recordType, fieldName,
			)
		}
	case TreatmentDeterministic, TreatmentRandom:
		if err := validation.Validate(entry.KeyName, rules.KeyName); err != nil {
			return apperrors.Wrapf(
				apperrors.ErrInvalidInput,
				"field %s.%s has invalid key name: %v", recordType, fieldName, err,
			)
		}
	default:
		return apperrors.Wrapf(
			apperrors.ErrInvalidInput,
			"field %s.%s has unknown treatment %q", recordType, fieldName, entry.Treatment,
		)
	}
	return nil
}

// Lookup returns the policy entry for a field. The second return value is
// false when the field has no entry; the caller decides what not-configured
// means (the codec copies such fields through as plaintext).
func (r *Registry) Lookup(recordType, fieldName string) (Entry, bool) {
	fields, ok := r.entries[recordType]
	if !ok {
		return Entry{}, false
	}
	entry, ok := fields[fieldName]
	return entry, ok
}

// CatalogEntry is one row of the operational field catalog.
type CatalogEntry struct {
	FieldName string
	Treatment Treatment
	KeyName   string
}

// Catalog lists every configured field of a record type with its treatment,
// sorted by field name. Used by operational tooling to audit the protection
// table; the silent part of the policy (unconfigured fields default to
// plaintext) is exactly what this output makes reviewable.
func (r *Registry) Catalog(recordType string) []CatalogEntry {
	fields, ok := r.entries[recordType]
	if !ok {
		return nil
	}

	catalog := make([]CatalogEntry, 0, len(fields))
	for fieldName, entry := range fields {
		catalog = append(catalog, CatalogEntry{
			FieldName: fieldName,
			Treatment: entry.Treatment,
			KeyName:   entry.KeyName,
		})
	}
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].FieldName < catalog[j].FieldName })
	return catalog
}

// RecordTypes lists the record types with at least one configured field.
func (r *Registry) RecordTypes() []string {
	types := make([]string, 0, len(r.entries))
	for recordType := range r.entries {
		types = append(types, recordType)
	}
	sort.Strings(types)
	return types
}

// DefaultPatientPolicy returns the protection table for patient records: one
// DEK per field, except the insurance pair which shares a key by explicit
// opt-in.
func DefaultPatientPolicy() map[string]map[string]Entry {
	return map[string]map[string]Entry{
		recordsDomain.RecordTypePatient: {
			recordsDomain.FieldID:        {Treatment: TreatmentPlaintext},
			recordsDomain.FieldFirstName: {Treatment: TreatmentPlaintext},
			recordsDomain.FieldLastName: {
				Treatment: TreatmentDeterministic,
				KeyName:   "patient_last_name_key",
			},
			recordsDomain.FieldEmail: {
				Treatment: TreatmentDeterministic,
				KeyName:   "patient_email_key",
			},
			recordsDomain.FieldPhone: {
				Treatment: TreatmentRandom,
				KeyName:   "patient_phone_key",
			},
			recordsDomain.FieldBirthDate: {
				Treatment: TreatmentRandom,
				KeyName:   "patient_birth_date_key",
			},
			recordsDomain.FieldSSN: {
				Treatment: TreatmentRandom,
				KeyName:   "patient_ssn_key",
			},
			recordsDomain.FieldDiagnosis: {
				Treatment: TreatmentRandom,
				KeyName:   "patient_diagnosis_key",
			},
			recordsDomain.FieldMedications: {
				Treatment: TreatmentRandom,
				KeyName:   "patient_medications_key",
			},
			recordsDomain.FieldInsuranceProvider: {
				Treatment:      TreatmentRandom,
				KeyName:        "patient_insurance_key",
				AllowSharedKey: true,
			},
			recordsDomain.FieldInsuranceNumber: {
				Treatment:      TreatmentRandom,
				KeyName:        "patient_insurance_key",
				AllowSharedKey: true,
			},
			recordsDomain.FieldNotes: {
				Treatment: TreatmentRandom,
				KeyName:   "patient_notes_key",
			},
			recordsDomain.FieldStatus:    {Treatment: TreatmentPlaintext},
			recordsDomain.FieldCreatedAt: {Treatment: TreatmentPlaintext},
			recordsDomain.FieldUpdatedAt: {Treatment: TreatmentPlaintext},
		},
	}
}
