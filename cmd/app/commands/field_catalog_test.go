package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlynn/securehealth-sub006/internal/records/policy"
)

func TestRunFieldCatalog(t *testing.T) {
	registry, err := policy.NewRegistry(policy.DefaultPatientPolicy())
	require.NoError(t, err)

	t.Run("text output", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunFieldCatalog(registry, &out, "text"))

		output := out.String()
		assert.Contains(t, output, "Record Type: patient")
		assert.Contains(t, output, "ssn")
		assert.Contains(t, output, "patient_ssn_key")
		assert.Contains(t, output, "deterministic")
	})

	t.Run("json output", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunFieldCatalog(registry, &out, "json"))

		var result map[string][]map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Contains(t, result, "patient")
		assert.Len(t, result["patient"], 15)
	})
}
