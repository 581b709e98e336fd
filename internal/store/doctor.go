package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobtrack/internal/model"
	"jobtrack/internal/ordering"
	"jobtrack/internal/statusutil"
)

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`

	Status model.Status `json:"status,omitempty"`
	ID     string       `json:"id,omitempty"`
}

type DoctorReport struct {
	Issues []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

var ErrDoctorIssuesFound = errors.New("doctor: issues found")

// Doctor checks the SQLite file and the owner's applications. Columns whose order keys
// have collapsed are reported as warnings; `board rebalance` fixes them.
func (s Store) Doctor(ctx context.Context, owner string) (DoctorReport, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		return DoctorReport{}, err
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return DoctorReport{}, err
	}
	defer db.Close()

	issues := []DoctorIssue{}

	var integrity string
	if err := db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&integrity); err != nil {
		return DoctorReport{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(integrity), "ok") {
		issues = append(issues, DoctorIssue{
			Level:   DoctorIssueLevelError,
			Code:    "sqlite_integrity",
			Message: integrity,
		})
	}

	rows, err := db.QueryContext(ctx, `SELECT id, status, salary_min, salary_max FROM applications
		WHERE user_id = ? AND deleted_on_unixms IS NULL ORDER BY id`, owner)
	if err != nil {
		return DoctorReport{}, err
	}
	for rows.Next() {
		var (
			id, status string
			lo, hi     float64
		)
		if err := rows.Scan(&id, &status, &lo, &hi); err != nil {
			rows.Close()
			return DoctorReport{}, err
		}
		if !statusutil.Valid(model.Status(status)) {
			issues = append(issues, DoctorIssue{
				Level:   DoctorIssueLevelError,
				Code:    "unknown_status",
				Message: fmt.Sprintf("status %q is not a board column; the application is hidden from the board", status),
				Status:  model.Status(status),
				ID:      id,
			})
		}
		if hi < lo {
			issues = append(issues, DoctorIssue{
				Level:   DoctorIssueLevelError,
				Code:    "salary_range_inverted",
				Message: fmt.Sprintf("salaryMax %v is below salaryMin %v", hi, lo),
				ID:      id,
			})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return DoctorReport{}, err
	}

	for _, st := range statusutil.Ordered() {
		col, err := loadColumn(ctx, db, owner, st)
		if err != nil {
			return DoctorReport{}, err
		}
		if ordering.NeedsRebalance(col, ordering.DefaultMinGap) {
			issues = append(issues, DoctorIssue{
				Level:   DoctorIssueLevelWarn,
				Code:    "column_needs_rebalance",
				Message: fmt.Sprintf("order keys in %s are tied or too close; run `jobtrack board rebalance --status %s`", st, st),
				Status:  st,
			})
		}
	}

	return DoctorReport{Issues: issues}, nil
}
