package commands

import (
	"bytes"
	"encoding/base64"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCreateMasterKey(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("explicit key id", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunCreateMasterKey(logger, &out, "prod-master-key-2026"))

		output := out.String()
		assert.Contains(t, output, `ACTIVE_MASTER_KEY_ID="prod-master-key-2026"`)

		match := regexp.MustCompile(`MASTER_KEYS="prod-master-key-2026:([A-Za-z0-9+/=]+)"`).FindStringSubmatch(output)
		require.Len(t, match, 2)

		key, err := base64.StdEncoding.DecodeString(match[1])
		require.NoError(t, err)
		assert.Len(t, key, 32)
	})

	t.Run("default key id is date-stamped", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunCreateMasterKey(logger, &out, ""))

		assert.Regexp(t, `MASTER_KEYS="master-key-\d{4}-\d{2}-\d{2}:`, out.String())
	})

	t.Run("two keys differ", func(t *testing.T) {
		var first, second bytes.Buffer
		require.NoError(t, RunCreateMasterKey(logger, &first, "k"))
		require.NoError(t, RunCreateMasterKey(logger, &second, "k"))

		assert.NotEqual(t, first.String(), second.String())
	})
}
