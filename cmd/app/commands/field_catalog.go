package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mrlynn/securehealth-sub006/internal/records/policy"
)

// RunFieldCatalog prints the field protection table for every configured
// record type: field name, treatment, and the DEK wrapping it. Fields without
// an entry are stored as plaintext, so this output is the full review surface
// of the policy.
func RunFieldCatalog(registry *policy.Registry, writer io.Writer, format string) error {
	if format == "json" {
		return outputCatalogJSON(registry, writer)
	}
	outputCatalogText(registry, writer)
	return nil
}

// outputCatalogText outputs the catalog in human-readable text format.
func outputCatalogText(registry *policy.Registry, writer io.Writer) {
	for _, recordType := range registry.RecordTypes() {
		_, _ = fmt.Fprintf(writer, "Record Type: %s\n", recordType)
		_, _ = fmt.Fprintf(writer, "%-20s %-15s %s\n", "FIELD", "TREATMENT", "KEY")
		for _, entry := range registry.Catalog(recordType) {
			keyName := entry.KeyName
			if keyName == "" {
				keyName = "-"
			}
			_, _ = fmt.Fprintf(writer, "%-20s %-15s %s\n", entry.FieldName, entry.Treatment, keyName)
		}
		_, _ = fmt.Fprintln(writer)
	}
}

// outputCatalogJSON outputs the catalog in JSON format for machine consumption.
func outputCatalogJSON(registry *policy.Registry, writer io.Writer) error {
	type catalogRow struct {
		FieldName string `json:"field_name"`
		Treatment string `json:"treatment"`
		KeyName   string `json:"key_name,omitempty"`
	}

	result := make(map[string][]catalogRow)
	for _, recordType := range registry.RecordTypes() {
		for _, entry := range registry.Catalog(recordType) {
			result[recordType] = append(result[recordType], catalogRow{
				FieldName: entry.FieldName,
				Treatment: string(entry.Treatment),
				KeyName:   entry.KeyName,
			})
		}
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
