package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/mrlynn/securehealth-sub006/internal/audit/domain"
)

func TestRunVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	start := time.Now().UTC().Add(-time.Hour).Format("2006-01-02 15:04:05")
	end := time.Now().UTC().Add(time.Hour).Format("2006-01-02 15:04:05")

	t.Run("all valid passes", func(t *testing.T) {
		useCase, repo, signer := newTestAudit(t)
		seedAuditLog(t, repo, signer, time.Now().UTC())

		var out bytes.Buffer
		require.NoError(t, RunVerifyAuditLogs(ctx, useCase, logger, &out, start, end, "text"))
		assert.Contains(t, out.String(), "Status: PASSED")
	})

	t.Run("tampered log fails with its id listed", func(t *testing.T) {
		useCase, repo, signer := newTestAudit(t)
		log := &auditDomain.AuditLog{
			ID:        uuid.Must(uuid.NewV7()),
			ActorID:   "u-1",
			Action:    auditDomain.ActionDelete,
			Outcome:   auditDomain.OutcomeSucceeded,
			CreatedAt: time.Now().UTC(),
		}
		var err error
		log.Signature, err = signer.Sign(log)
		require.NoError(t, err)
		log.Outcome = auditDomain.OutcomeDenied
		require.NoError(t, repo.Create(ctx, log))

		var out bytes.Buffer
		err = RunVerifyAuditLogs(ctx, useCase, logger, &out, start, end, "text")
		require.ErrorContains(t, err, "integrity check failed")
		assert.Contains(t, out.String(), log.ID.String())
	})

	t.Run("json output", func(t *testing.T) {
		useCase, repo, signer := newTestAudit(t)
		seedAuditLog(t, repo, signer, time.Now().UTC())

		var out bytes.Buffer
		require.NoError(t, RunVerifyAuditLogs(ctx, useCase, logger, &out, start, end, "json"))

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, float64(1), result["total_checked"])
		assert.Equal(t, true, result["passed"])
	})

	t.Run("invalid dates rejected", func(t *testing.T) {
		useCase, _, _ := newTestAudit(t)

		err := RunVerifyAuditLogs(ctx, useCase, logger, io.Discard, "not-a-date", end, "text")
		assert.ErrorContains(t, err, "invalid start date")

		err = RunVerifyAuditLogs(ctx, useCase, logger, io.Discard, end, start, "text")
		assert.ErrorContains(t, err, "end date must be after start date")
	})
}
