package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/taskboard-api/model"
)

// CronLogRetention is how long job logs are kept
const CronLogRetention = 30 * 24 * time.Hour

// CleanupExpiredTokens deletes blacklist entries for tokens past their expiry.
// Such tokens fail signature validation on their own, so the rows are dead weight.
func (m *CronManager) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cronLog := m.logJobStart(JobCleanupExpiredTokens)

	deleted, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(cronLog, fmt.Errorf("failed to delete expired tokens: %w", err))
		return
	}

	remaining, err := m.blacklist.GetBlacklistedTokenCount(ctx)
	if err != nil {
		m.logJobError(cronLog, fmt.Errorf("failed to count blacklisted tokens: %w", err))
		return
	}

	m.logJobComplete(cronLog,
		fmt.Sprintf("Deleted %d expired tokens", deleted),
		map[string]any{"deleted": deleted, "remaining": remaining})
}

// PruneCronLogs removes finished job logs older than CronLogRetention
func (m *CronManager) PruneCronLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cronLog := m.logJobStart(JobPruneCronLogs)

	cutoff := time.Now().Add(-CronLogRetention)
	result := m.db.WithContext(ctx).
		Where("started_at < ? AND status <> ?", cutoff, model.CronJobRunning).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(cronLog, fmt.Errorf("failed to prune job logs: %w", result.Error))
		return
	}

	m.logJobComplete(cronLog,
		fmt.Sprintf("Pruned %d job logs", result.RowsAffected),
		map[string]any{"deleted": result.RowsAffected, "cutoff": cutoff.Format(time.RFC3339)})
}
