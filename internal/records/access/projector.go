// Package access reduces fully decrypted records to the field subset a
// caller's role may see. Projection is a pure function over an ordered grant
// table: deny unless explicitly granted, most privileged role wins.
package access

import (
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
	recordsDomain "github.com/mrlynn/securehealth-sub006/internal/records/domain"
)

// Grant is one row of the role table: a role and the fields it may see.
type Grant struct {
	Role   recordsDomain.Role
	Fields []string
}

// Projector applies the role grant table to decrypted records.
type Projector struct {
	// grants are ordered most privileged first; the first grant whose role
	// the actor holds determines the view. Roles are never unioned, so an
	// actor with several roles still gets exactly one well-defined view.
	grants   []Grant
	baseline []string
}

// NewProjector builds a projector from an ordered grant table and the
// baseline fields every authenticated caller may see. Each grant's field set
// must include the baseline; a violation is a configuration bug.
func NewProjector(grants []Grant, baseline []string) (*Projector, error) {
	if len(baseline) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "baseline field set must not be empty")
	}

	for _, grant := range grants {
		granted := make(map[string]struct{}, len(grant.Fields))
		for _, field := range grant.Fields {
			granted[field] = struct{}{}
		}
		for _, field := range baseline {
			if _, ok := granted[field]; !ok {
				return nil, apperrors.Wrapf(
					apperrors.ErrInvalidInput,
					"role %s grant is missing baseline field %s", grant.Role, field,
				)
			}
		}
	}

	return &Projector{grants: grants, baseline: baseline}, nil
}

// Project returns the field subset of a decrypted record visible to the
// actor. Unknown or missing roles receive the baseline set. Fields granted
// but absent from the record (withheld by a decode warning, or simply unset)
// are omitted rather than emitted as nil placeholders.
func (p *Projector) Project(
	recordType string,
	fields map[string]any,
	warnings []recordsDomain.FieldWarning,
	actor recordsDomain.Actor,
) *recordsDomain.ProjectedView {
	visible := p.baseline
	for _, grant := range p.grants {
		if actor.HasRole(grant.Role) {
			visible = grant.Fields
			break
		}
	}

	projected := make(map[string]any, len(visible))
	for _, name := range visible {
		value, ok := fields[name]
		if !ok || value == nil {
			continue
		}
		projected[name] = value
	}

	// Only warnings about visible fields are carried; a caller who cannot
	// see a field learns nothing about its decodability.
	var visibleWarnings []recordsDomain.FieldWarning
	for _, warning := range warnings {
		for _, name := range visible {
			if warning.Field == name {
				visibleWarnings = append(visibleWarnings, warning)
				break
			}
		}
	}

	return &recordsDomain.ProjectedView{
		RecordType: recordType,
		Fields:     projected,
		Warnings:   visibleWarnings,
	}
}

// BaselineFields returns the patient fields every authenticated caller sees.
func BaselineFields() []string {
	return []string{
		recordsDomain.FieldID,
		recordsDomain.FieldFirstName,
		recordsDomain.FieldLastName,
		recordsDomain.FieldStatus,
		recordsDomain.FieldCreatedAt,
		recordsDomain.FieldUpdatedAt,
	}
}

// DefaultPatientGrants returns the ordered role table for patient records.
func DefaultPatientGrants() []Grant {
	baseline := BaselineFields()
	return []Grant{
		{
			Role: recordsDomain.RoleDoctor,
			Fields: append(baseline,
				recordsDomain.FieldEmail,
				recordsDomain.FieldPhone,
				recordsDomain.FieldBirthDate,
				recordsDomain.FieldSSN,
				recordsDomain.FieldDiagnosis,
				recordsDomain.FieldMedications,
				recordsDomain.FieldInsuranceProvider,
				recordsDomain.FieldInsuranceNumber,
				recordsDomain.FieldNotes,
			),
		},
		{
			Role: recordsDomain.RoleNurse,
			Fields: append(baseline,
				recordsDomain.FieldEmail,
				recordsDomain.FieldPhone,
				recordsDomain.FieldBirthDate,
				recordsDomain.FieldDiagnosis,
				recordsDomain.FieldMedications,
				recordsDomain.FieldNotes,
			),
		},
		{
			Role: recordsDomain.RoleReceptionist,
			Fields: append(baseline,
				recordsDomain.FieldEmail,
				recordsDomain.FieldPhone,
				recordsDomain.FieldBirthDate,
				recordsDomain.FieldInsuranceProvider,
				recordsDomain.FieldInsuranceNumber,
			),
		},
	}
}
