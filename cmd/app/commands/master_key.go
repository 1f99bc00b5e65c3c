package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
)

// RunCreateMasterKey generates a cryptographically secure 32-byte master key
// for DEK wrapping and prints the environment variables to configure it. Key
// material is zeroed from memory after encoding.
//
// If keyID is empty, a default ID in format "master-key-YYYY-MM-DD" is used.
//
// Output format:
//   - MASTER_KEYS="<keyID>:<base64-encoded-key>"
//   - ACTIVE_MASTER_KEY_ID="<keyID>"
//
// Store the output in a secrets manager; the key wraps every DEK in the vault.
// For KMS-backed wrapping configure KMS_KEY_URI instead of a local master key.
func RunCreateMasterKey(logger *slog.Logger, writer io.Writer, keyID string) error {
	// Generate default key ID if not provided
	if keyID == "" {
		keyID = fmt.Sprintf("master-key-%s", time.Now().Format("2006-01-02"))
	}

	masterKey := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(masterKey); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	encodedKey := base64.StdEncoding.EncodeToString(masterKey)
	cryptoDomain.Zero(masterKey)

	logger.Info("master key generated", slog.String("key_id", keyID))

	_, _ = fmt.Fprintln(writer, "# Master Key Configuration")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "MASTER_KEYS=%q\n", keyID+":"+encodedKey)
	_, _ = fmt.Fprintf(writer, "ACTIVE_MASTER_KEY_ID=%q\n", keyID)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# For key rotation, append the new key and switch the active ID:")
	_, _ = fmt.Fprintf(writer, "# MASTER_KEYS=%q\n", keyID+":<base64-key>,next-key:<base64-key>")
	_, _ = fmt.Fprintln(writer, `# ACTIVE_MASTER_KEY_ID="next-key"`)

	return nil
}
