package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	auditUsecase "github.com/mrlynn/securehealth-sub006/internal/audit/usecase"
)

// cleanCountBatchSize is the page size used when counting logs in dry-run mode.
const cleanCountBatchSize = 500

// RunCleanAuditLogs deletes audit logs older than the specified number of days.
// Supports dry-run mode to preview deletion count and both text/JSON output formats.
//
// Requirements: database must be migrated and accessible.
func RunCleanAuditLogs(
	ctx context.Context,
	auditUseCase auditUsecase.AuditUseCase,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	// Validate days parameter
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning audit logs",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	before := time.Now().UTC().AddDate(0, 0, -days)

	var count int64
	var err error
	if dryRun {
		count, err = countOlderThan(ctx, auditUseCase, before)
	} else {
		count, err = auditUseCase.CleanOlderThan(ctx, before)
	}
	if err != nil {
		return fmt.Errorf("failed to clean audit logs: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputCleanJSON(writer, count, days, dryRun); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputCleanText(writer, count, days, dryRun)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

// countOlderThan counts logs created before the cutoff without deleting them.
func countOlderThan(
	ctx context.Context,
	auditUseCase auditUsecase.AuditUseCase,
	before time.Time,
) (int64, error) {
	var count int64
	for offset := 0; ; offset += cleanCountBatchSize {
		logs, err := auditUseCase.List(ctx, offset, cleanCountBatchSize, nil, &before)
		if err != nil {
			return 0, err
		}
		count += int64(len(logs))
		if len(logs) < cleanCountBatchSize {
			return count, nil
		}
	}
}

// outputCleanText outputs the result in human-readable text format.
func outputCleanText(writer io.Writer, count int64, days int, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(writer, "Dry-run mode: Would delete %d audit log(s) older than %d day(s)\n", count, days)
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d audit log(s) older than %d day(s)\n", count, days)
	}
}

// outputCleanJSON outputs the result in JSON format for machine consumption.
func outputCleanJSON(writer io.Writer, count int64, days int, dryRun bool) error {
	result := map[string]any{
		"count":   count,
		"days":    days,
		"dry_run": dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
