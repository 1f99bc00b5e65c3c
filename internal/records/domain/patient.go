// Package domain defines the record entities protected by field-level
// encryption: the patient record, its storage representation, the encrypted
// value blob format, and the role-projected view returned to callers.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// RecordTypePatient is the record type tag for patient records. It scopes
// policy lookups and is part of the AAD that binds ciphertext to its field.
const RecordTypePatient = "patient"

// Patient field names as they appear in policy entries, storage documents,
// and projected views.
const (
	FieldID                = "id"
	FieldFirstName         = "first_name"
	FieldLastName          = "last_name"
	FieldEmail             = "email"
	FieldPhone             = "phone"
	FieldBirthDate         = "birth_date"
	FieldSSN               = "ssn"
	FieldDiagnosis         = "diagnosis"
	FieldMedications       = "medications"
	FieldInsuranceProvider = "insurance_provider"
	FieldInsuranceNumber   = "insurance_number"
	FieldNotes             = "notes"
	FieldStatus            = "status"
	FieldCreatedAt         = "created_at"
	FieldUpdatedAt         = "updated_at"
)

// Patient statuses.
const (
	PatientStatusActive   = "active"
	PatientStatusInactive = "inactive"
	PatientStatusArchived = "archived"
)

// Patient is a fully decrypted patient record.
type Patient struct {
	ID                uuid.UUID
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	BirthDate         time.Time
	SSN               string
	Diagnosis         []string
	Medications       []string
	InsuranceProvider string
	InsuranceNumber   string
	Notes             string
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Fields returns the patient as a field-name keyed map, the shape consumed by
// the codec. Zero-valued optional fields are emitted as nil so they encode to
// null without touching the cipher.
func (p *Patient) Fields() map[string]any {
	fields := map[string]any{
		FieldID:        p.ID.String(),
		FieldFirstName: p.FirstName,
		FieldLastName:  p.LastName,
		FieldStatus:    p.Status,
		FieldCreatedAt: p.CreatedAt,
		FieldUpdatedAt: p.UpdatedAt,
	}

	setOptString := func(name, value string) {
		if value == "" {
			fields[name] = nil
			return
		}
		fields[name] = value
	}
	setOptString(FieldEmail, p.Email)
	setOptString(FieldPhone, p.Phone)
	setOptString(FieldSSN, p.SSN)
	setOptString(FieldInsuranceProvider, p.InsuranceProvider)
	setOptString(FieldInsuranceNumber, p.InsuranceNumber)
	setOptString(FieldNotes, p.Notes)

	if p.BirthDate.IsZero() {
		fields[FieldBirthDate] = nil
	} else {
		fields[FieldBirthDate] = p.BirthDate
	}
	if len(p.Diagnosis) == 0 {
		fields[FieldDiagnosis] = nil
	} else {
		fields[FieldDiagnosis] = p.Diagnosis
	}
	if len(p.Medications) == 0 {
		fields[FieldMedications] = nil
	} else {
		fields[FieldMedications] = p.Medications
	}

	return fields
}

// PatientFromFields rebuilds a Patient from a decoded field map. Fields that
// are absent or nil (withheld by a decode warning or never set) are left at
// their zero value.
func PatientFromFields(fields map[string]any) (*Patient, error) {
	var patient Patient

	if raw, ok := fields[FieldID]; ok && raw != nil {
		idStr, ok := raw.(string)
		if ok {
			id, err := uuid.Parse(idStr)
			if err != nil {
				return nil, apperrors.Wrap(ErrMalformedDocument, "invalid record id")
			}
			patient.ID = id
		} else if id, ok := raw.(uuid.UUID); ok {
			patient.ID = id
		} else {
			return nil, apperrors.Wrap(ErrMalformedDocument, "invalid record id")
		}
	}

	var err error
	if patient.FirstName, err = optionalString(fields, FieldFirstName); err != nil {
		return nil, err
	}
	if patient.LastName, err = optionalString(fields, FieldLastName); err != nil {
		return nil, err
	}
	if patient.Email, err = optionalString(fields, FieldEmail); err != nil {
		return nil, err
	}
	if patient.Phone, err = optionalString(fields, FieldPhone); err != nil {
		return nil, err
	}
	if patient.SSN, err = optionalString(fields, FieldSSN); err != nil {
		return nil, err
	}
	if patient.InsuranceProvider, err = optionalString(fields, FieldInsuranceProvider); err != nil {
		return nil, err
	}
	if patient.InsuranceNumber, err = optionalString(fields, FieldInsuranceNumber); err != nil {
		return nil, err
	}
	if patient.Notes, err = optionalString(fields, FieldNotes); err != nil {
		return nil, err
	}
	if patient.Status, err = optionalString(fields, FieldStatus); err != nil {
		return nil, err
	}
	if patient.BirthDate, err = optionalTime(fields, FieldBirthDate); err != nil {
		return nil, err
	}
	if patient.CreatedAt, err = optionalTime(fields, FieldCreatedAt); err != nil {
		return nil, err
	}
	if patient.UpdatedAt, err = optionalTime(fields, FieldUpdatedAt); err != nil {
		return nil, err
	}
	if patient.Diagnosis, err = optionalStringSlice(fields, FieldDiagnosis); err != nil {
		return nil, err
	}
	if patient.Medications, err = optionalStringSlice(fields, FieldMedications); err != nil {
		return nil, err
	}

	return &patient, nil
}

func optionalString(fields map[string]any, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", apperrors.Wrapf(ErrMalformedDocument, "field %s has unexpected type", name)
	}
	return value, nil
}

func optionalTime(fields map[string]any, name string) (time.Time, error) {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return time.Time{}, nil
	}
	value, ok := raw.(time.Time)
	if !ok {
		return time.Time{}, apperrors.Wrapf(ErrMalformedDocument, "field %s has unexpected type", name)
	}
	return value, nil
}

func optionalStringSlice(fields map[string]any, name string) ([]string, error) {
	raw, ok := fields[name]
	if !ok || raw == nil {
		return nil, nil
	}
	switch value := raw.(type) {
	case []string:
		return value, nil
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, apperrors.Wrapf(ErrMalformedDocument, "field %s has unexpected type", name)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, apperrors.Wrapf(ErrMalformedDocument, "field %s has unexpected type", name)
	}
}
