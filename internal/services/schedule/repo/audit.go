package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	perr "fieldops/internal/platform/errors"
	"fieldops/internal/platform/store"
	"fieldops/internal/services/schedule/domain"
)

// InsertAudit writes one clear-audit row; the payload travels as JSONB.
func (r *queries) InsertAudit(ctx context.Context, row domain.AuditRow) error {
	payload, err := json.Marshal(row.Appointments)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "audit payload marshal failed")
	}
	const sql = `
		INSERT INTO schedule_clear_audit (
			id, schedule_date, cleared_at, cleared_by, notes,
			appointments_data, jobs_reset, appointment_count
		) VALUES ($1, $2::date, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8)
	`
	return store.ExecOne(ctx, r.q, sql,
		row.ID, row.ScheduleDate, row.ClearedAt, row.ClearedBy, row.Notes,
		payload, row.JobsReset, row.AppointmentCount)
}

const auditColumns = `
		id, schedule_date::text, cleared_at,
		COALESCE(cleared_by, ''), COALESCE(notes, ''),
		appointments_data, COALESCE(jobs_reset, '{}'), appointment_count`

func scanAudit(row store.Row) (domain.AuditRow, error) {
	var a domain.AuditRow
	var payload []byte
	err := row.Scan(&a.ID, &a.ScheduleDate, &a.ClearedAt,
		&a.ClearedBy, &a.Notes, &payload, &a.JobsReset, &a.AppointmentCount)
	if err != nil {
		return domain.AuditRow{}, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &a.Appointments); err != nil {
			return domain.AuditRow{}, perr.Wrapf(err, perr.ErrorCodeJSON, "audit payload unmarshal failed")
		}
	}
	return a, nil
}

// AuditByID fetches one audit row, NotFound when absent.
func (r *queries) AuditByID(ctx context.Context, id uuid.UUID) (domain.AuditRow, error) {
	const sql = `SELECT ` + auditColumns + ` FROM schedule_clear_audit WHERE id = $1`
	a, err := store.One(ctx, r.q, scanAudit, sql, id)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return domain.AuditRow{}, perr.NotFoundf("audit %s not found", id)
		}
		return domain.AuditRow{}, err
	}
	return a, nil
}

// DeleteAudit removes a consumed audit row.
func (r *queries) DeleteAudit(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := store.Exec(ctx, r.q, `DELETE FROM schedule_clear_audit WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RecentAudits lists clears inside the lookback window, newest first.
func (r *queries) RecentAudits(ctx context.Context, hours int) ([]domain.AuditRow, error) {
	const sql = `
		SELECT ` + auditColumns + `
		FROM schedule_clear_audit
		WHERE cleared_at >= NOW() - make_interval(hours => $1)
		ORDER BY cleared_at DESC
	`
	return store.Many(ctx, r.q, scanAudit, sql, hours)
}
