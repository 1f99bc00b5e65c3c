package domain

// FieldWarning reports a field that was withheld from a decoded record, most
// commonly because its ciphertext failed to decrypt. Warnings are for the
// operational log; they are never serialized into caller-facing errors.
type FieldWarning struct {
	Field  string
	Reason string
}

// ProjectedView is the role-filtered subset of a decrypted record returned to
// a caller. It exists only for the duration of a single response and is never
// persisted.
type ProjectedView struct {
	RecordType string
	Fields     map[string]any
	Warnings   []FieldWarning
}

// Has reports whether the view contains the named field.
func (v *ProjectedView) Has(field string) bool {
	_, ok := v.Fields[field]
	return ok
}
