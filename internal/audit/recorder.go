// Package audit records the outcome of committed and failed edit operations.
// Recording is best-effort: a failed insert is logged and never propagated
// into the editing path.
package audit

import (
	"context"
	"time"

	"studio/internal/infra"
	"studio/internal/sqlinline"
)

// Entry describes one dispatched edit operation.
type Entry struct {
	SessionID string
	Op        string
	OK        bool
	Message   string
	Elapsed   time.Duration
}

// Recorder writes entries to Postgres when configured. A nil Recorder or one
// without an executor is a no-op, so DB-less deployments skip auditing
// without branching at call sites.
type Recorder struct {
	sql    infra.SQLExecutor
	logger infra.Logger
}

func NewRecorder(sql infra.SQLExecutor, logger infra.Logger) *Recorder {
	return &Recorder{sql: sql, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if r == nil || r.sql == nil {
		return
	}
	_, err := r.sql.Exec(ctx, sqlinline.QInsertEditAudit,
		entry.SessionID,
		entry.Op,
		entry.OK,
		entry.Message,
		entry.Elapsed.Milliseconds(),
	)
	if err != nil {
		r.logger.Warn().Err(err).Str("op", entry.Op).Msg("audit: record failed")
	}
}
