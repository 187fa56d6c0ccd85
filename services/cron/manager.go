package cron

import (
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/taskboard-api/model"
	"github.com/sahilchouksey/taskboard-api/utils/auth"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	JobCleanupExpiredTokens = "cleanup_expired_tokens"
	JobPruneCronLogs        = "prune_cron_logs"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	db        *gorm.DB
	blacklist *auth.BlacklistService
	log       *zap.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, log *zap.Logger) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:      c,
		db:        db,
		blacklist: auth.NewBlacklistService(db),
		log:       log.Named("cron"),
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	m.log.Info("Starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	m.log.Info("Cron jobs started", zap.Int("jobs", len(m.cron.Entries())))
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	m.log.Info("Stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Every hour: drop blacklist rows whose token has expired anyway
	if _, err := m.cron.AddFunc("0 0 * * * *", m.CleanupExpiredTokens); err != nil {
		return err
	}

	// Daily at 3 AM: prune old job logs
	if _, err := m.cron.AddFunc("0 0 3 * * *", m.PruneCronLogs); err != nil {
		return err
	}

	return nil
}

// logJobStart records a running job and returns its log row
func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	m.log.Info("Starting job", zap.String("job", jobName))

	cronLog := &model.CronJobLog{
		JobName:   jobName,
		Status:    model.CronJobRunning,
		StartedAt: time.Now(),
		Metadata:  datatypes.JSON("{}"),
	}
	if err := m.db.Create(cronLog).Error; err != nil {
		m.log.Warn("Failed to record job start", zap.String("job", jobName), zap.Error(err))
	}
	return cronLog
}

// logJobComplete marks the run completed with a message and metadata
func (m *CronManager) logJobComplete(cronLog *model.CronJobLog, message string, metadata map[string]any) {
	m.log.Info("Completed job", zap.String("job", cronLog.JobName), zap.String("message", message))

	updates := m.finishUpdates(cronLog, model.CronJobCompleted)
	updates["message"] = message
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			updates["metadata"] = datatypes.JSON(raw)
		}
	}
	m.saveJobLog(cronLog, updates)
}

// logJobError marks the run failed
func (m *CronManager) logJobError(cronLog *model.CronJobLog, err error) {
	m.log.Error("Job failed", zap.String("job", cronLog.JobName), zap.Error(err))

	updates := m.finishUpdates(cronLog, model.CronJobFailed)
	updates["error_msg"] = err.Error()
	m.saveJobLog(cronLog, updates)
}

func (m *CronManager) finishUpdates(cronLog *model.CronJobLog, status model.CronJobStatus) map[string]any {
	now := time.Now()
	return map[string]any{
		"status":       status,
		"completed_at": now,
		"duration":     now.Sub(cronLog.StartedAt).Milliseconds(),
	}
}

func (m *CronManager) saveJobLog(cronLog *model.CronJobLog, updates map[string]any) {
	if cronLog.ID == 0 {
		return
	}
	if err := m.db.Model(cronLog).Updates(updates).Error; err != nil {
		m.log.Warn("Failed to update job log", zap.String("job", cronLog.JobName), zap.Error(err))
	}
}
