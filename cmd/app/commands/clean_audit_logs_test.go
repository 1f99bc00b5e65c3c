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
	auditRepository "github.com/mrlynn/securehealth-sub006/internal/audit/repository"
	auditUsecase "github.com/mrlynn/securehealth-sub006/internal/audit/usecase"
)

func newTestAudit(t *testing.T) (auditUsecase.AuditUseCase, *auditRepository.MemoryAuditLogRepository, *auditDomain.Signer) {
	t.Helper()
	repo := auditRepository.NewMemoryAuditLogRepository()
	signer, err := auditDomain.NewSigner([]byte("test-audit-signing-secret"))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auditUsecase.NewAuditUseCase(repo, signer, logger), repo, signer
}

func seedAuditLog(t *testing.T, repo *auditRepository.MemoryAuditLogRepository, signer *auditDomain.Signer, createdAt time.Time) *auditDomain.AuditLog {
	t.Helper()
	log := &auditDomain.AuditLog{
		ID:         uuid.Must(uuid.NewV7()),
		ActorID:    "u-1",
		Action:     auditDomain.ActionRead,
		TargetType: "patient",
		TargetID:   "p-1",
		Outcome:    auditDomain.OutcomeSucceeded,
		CreatedAt:  createdAt,
	}
	var err error
	log.Signature, err = signer.Sign(log)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), log))
	return log
}

func TestRunCleanAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("deletes old logs", func(t *testing.T) {
		useCase, repo, signer := newTestAudit(t)
		seedAuditLog(t, repo, signer, time.Now().UTC().AddDate(0, 0, -120))
		seedAuditLog(t, repo, signer, time.Now().UTC())

		var out bytes.Buffer
		require.NoError(t, RunCleanAuditLogs(ctx, useCase, logger, &out, 90, false, "text"))

		assert.Contains(t, out.String(), "Successfully deleted 1 audit log(s) older than 90 day(s)")
		assert.Equal(t, 1, repo.Count())
	})

	t.Run("dry run counts without deleting", func(t *testing.T) {
		useCase, repo, signer := newTestAudit(t)
		seedAuditLog(t, repo, signer, time.Now().UTC().AddDate(0, 0, -120))
		seedAuditLog(t, repo, signer, time.Now().UTC().AddDate(0, 0, -100))

		var out bytes.Buffer
		require.NoError(t, RunCleanAuditLogs(ctx, useCase, logger, &out, 90, true, "json"))

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, float64(2), result["count"])
		assert.Equal(t, true, result["dry_run"])
		assert.Equal(t, 2, repo.Count())
	})

	t.Run("negative days rejected", func(t *testing.T) {
		useCase, _, _ := newTestAudit(t)

		err := RunCleanAuditLogs(ctx, useCase, logger, io.Discard, -1, false, "text")
		assert.ErrorContains(t, err, "days must be a positive number")
	})
}
