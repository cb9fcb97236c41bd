package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"teamdesk/internal/domain"
)

type meetingRepository struct {
	DB *sql.DB
}

func NewMeetingRepository(db *sql.DB) domain.MeetingRepository {
	return &meetingRepository{DB: db}
}

const meetingColumns = `id, topic, date, start_time, end_time, creator_id, created_at, updated_at`

// shortTime trims a Postgres TIME value (HH:MM:SS) to the HH:MM wire format.
func shortTime(s string) string {
	if len(s) > len(domain.TimeOfDayLayout) {
		return s[:len(domain.TimeOfDayLayout)]
	}
	return s
}

func scanMeeting(row interface{ Scan(...any) error }) (*domain.Meeting, error) {
	m := &domain.Meeting{}
	var start, end string
	err := row.Scan(&m.ID, &m.Topic, &m.Date, &start, &end, &m.CreatorID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.StartTime = shortTime(start)
	m.EndTime = shortTime(end)
	return m, nil
}

// lockParticipants takes a transaction-scoped advisory lock per participant,
// in sorted order, so concurrent overlapping proposals for the same user
// serialize before the conflict check.
func lockParticipants(ctx context.Context, tx *sql.Tx, memberIDs []string) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT pg_advisory_xact_lock(hashtext(uid))
		FROM unnest($1::text[]) AS uid
		ORDER BY uid
	`, pq.Array(memberIDs))
	if err != nil {
		return fmt.Errorf("lock participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
	}
	return rows.Err()
}

// findConflicts returns the emails of users in memberIDs who are already in a
// meeting on the same date whose [start_time, end_time) interval overlaps the
// proposed one. excludeID, when non-empty, skips the meeting being updated.
func findConflicts(ctx context.Context, tx *sql.Tx, date time.Time, startTime, endTime string, memberIDs []string, excludeID string) ([]string, error) {
	query := `
		SELECT DISTINCT u.email
		FROM meetings m
		JOIN meeting_members mm ON mm.meeting_id = m.id
		JOIN users u ON u.id = mm.user_id
		WHERE m.date = $1
		  AND m.start_time < $2
		  AND m.end_time > $3
		  AND mm.user_id = ANY($4)
	`
	args := []interface{}{date, endTime, startTime, pq.Array(memberIDs)}
	if excludeID != "" {
		query += ` AND m.id <> $5`
		args = append(args, excludeID)
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func insertMembers(ctx context.Context, tx *sql.Tx, meetingID string, memberIDs []string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO meeting_members (meeting_id, user_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT (meeting_id, user_id) DO NOTHING
	`, meetingID, pq.Array(memberIDs))
	return err
}

func (r *meetingRepository) Create(ctx context.Context, m *domain.Meeting, memberIDs []string) (conflicts []string, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil || conflicts != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockParticipants(ctx, tx, memberIDs); err != nil {
		return nil, err
	}
	conflicts, err = findConflicts(ctx, tx, m.Date, m.StartTime, m.EndTime, memberIDs, "")
	if err != nil {
		return nil, fmt.Errorf("find conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO meetings (topic, date, start_time, end_time, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, m.Topic, m.Date, m.StartTime, m.EndTime, m.CreatorID, m.CreatedAt, m.UpdatedAt).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("insert meeting: %w", err)
	}
	if err = insertMembers(ctx, tx, m.ID, memberIDs); err != nil {
		return nil, fmt.Errorf("insert members: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *meetingRepository) Update(ctx context.Context, m *domain.Meeting, memberIDs []string) (conflicts []string, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil || conflicts != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockParticipants(ctx, tx, memberIDs); err != nil {
		return nil, err
	}
	conflicts, err = findConflicts(ctx, tx, m.Date, m.StartTime, m.EndTime, memberIDs, m.ID)
	if err != nil {
		return nil, fmt.Errorf("find conflicts: %w", err)
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE meetings
		SET topic = $1, date = $2, start_time = $3, end_time = $4, updated_at = NOW()
		WHERE id = $5
	`, m.Topic, m.Date, m.StartTime, m.EndTime, m.ID)
	if err != nil {
		return nil, fmt.Errorf("update meeting: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		err = domain.ErrNotFound
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM meeting_members WHERE meeting_id = $1`, m.ID); err != nil {
		return nil, fmt.Errorf("clear members: %w", err)
	}
	if err = insertMembers(ctx, tx, m.ID, memberIDs); err != nil {
		return nil, fmt.Errorf("insert members: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *meetingRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`
	m, err := scanMeeting(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	members, err := r.listMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Members = members
	return m, nil
}

func (r *meetingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM meetings WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *meetingRepository) ListForUserBetween(ctx context.Context, userID string, startDate, endDate time.Time) ([]*domain.Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings m
		JOIN meeting_members mm ON mm.meeting_id = m.id
		WHERE mm.user_id = $1
		  AND m.date >= $2 AND m.date < $3
		ORDER BY m.date, m.start_time
	`
	return r.queryMeetings(ctx, query, userID, startDate, endDate)
}

func (r *meetingRepository) ListDueForReminder(ctx context.Context, dates []time.Time) ([]*domain.Meeting, error) {
	query := `
		SELECT ` + meetingColumns + `
		FROM meetings m
		WHERE NOT m.reminder_1hour_sent
		  AND m.date = ANY($1)
		ORDER BY m.date, m.start_time
	`
	meetings, err := r.queryMeetings(ctx, query, pq.Array(dates))
	if err != nil {
		return nil, err
	}
	for _, m := range meetings {
		members, err := r.listMembers(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		m.Members = members
	}
	return meetings, nil
}

func (r *meetingRepository) MarkReminderSent(ctx context.Context, meetingID string) error {
	query := `UPDATE meetings SET reminder_1hour_sent = TRUE WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, meetingID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *meetingRepository) listMembers(ctx context.Context, meetingID string) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		JOIN meeting_members mm ON mm.user_id = u.id
		WHERE mm.meeting_id = $1
		ORDER BY u.email
	`
	rows, err := r.DB.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *meetingRepository) queryMeetings(ctx context.Context, query string, args ...interface{}) ([]*domain.Meeting, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	meetings := make([]*domain.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}
