package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ygellis/luach-bot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	s := &PostgresStorage{db: db, logger: logger}
	if err := s.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}
	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SaveEvent(ctx context.Context, ev *models.Event) error {
	query := `
		INSERT INTO events (id, user_id, title, starts_at, location, participants, notes, priority,
			recurrence_frequency, recurrence_interval, recurrence_weekday)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	var freq sql.NullString
	var interval, weekday sql.NullInt64
	if ev.Recurrence != nil {
		freq = sql.NullString{String: string(ev.Recurrence.Frequency), Valid: true}
		interval = sql.NullInt64{Int64: int64(ev.Recurrence.Interval), Valid: true}
		if ev.Recurrence.ByWeekday != nil {
			weekday = sql.NullInt64{Int64: int64(*ev.Recurrence.ByWeekday), Valid: true}
		}
	}

	err := s.db.QueryRowContext(ctx, query,
		ev.ID, ev.UserID, ev.Title, ev.StartsAt, ev.Location,
		pq.Array(ev.Participants), ev.Notes, string(ev.Priority),
		freq, interval, weekday,
	).Scan(&ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving event: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SaveReminder(ctx context.Context, r *models.Reminder) error {
	query := `
		INSERT INTO reminders (id, user_id, title, due_at, notify_at, lead_minutes, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query,
		r.ID, r.UserID, r.Title, r.DueAt, r.NotifyAt, r.LeadMin, r.Notes,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("error saving reminder: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListUpcomingEvents(ctx context.Context, userID int64, from time.Time, limit int) ([]models.Event, error) {
	query := `
		SELECT id, user_id, title, starts_at, location, participants, notes, priority,
			recurrence_frequency, recurrence_interval, recurrence_weekday, created_at
		FROM events
		WHERE user_id = $1 AND starts_at >= $2
		ORDER BY starts_at ASC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, userID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStorage) SearchEvents(ctx context.Context, userID int64, q string) ([]models.Event, error) {
	query := `
		SELECT id, user_id, title, starts_at, location, participants, notes, priority,
			recurrence_frequency, recurrence_interval, recurrence_weekday, created_at
		FROM events
		WHERE user_id = $1 AND title ILIKE '%' || $2 || '%'
		ORDER BY starts_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, q)
	if err != nil {
		return nil, fmt.Errorf("error searching events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStorage) DeleteEvent(ctx context.Context, userID int64, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("error deleting event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) UpdateEventTime(ctx context.Context, userID int64, id string, startsAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET starts_at = $3 WHERE user_id = $1 AND id = $2`, userID, id, startsAt)
	if err != nil {
		return fmt.Errorf("error updating event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) AddEventNote(ctx context.Context, userID int64, id string, note string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET notes = CASE WHEN notes = '' THEN $3 ELSE notes || E'\n' || $3 END
		WHERE user_id = $1 AND id = $2`, userID, id, note)
	if err != nil {
		return fmt.Errorf("error adding note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var ev models.Event
		var freq sql.NullString
		var interval, weekday sql.NullInt64
		err := rows.Scan(
			&ev.ID, &ev.UserID, &ev.Title, &ev.StartsAt, &ev.Location,
			pq.Array(&ev.Participants), &ev.Notes, &ev.Priority,
			&freq, &interval, &weekday, &ev.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}
		if freq.Valid {
			rule := &models.RecurrenceRule{
				Frequency: models.Frequency(freq.String),
				Interval:  int(interval.Int64),
			}
			if weekday.Valid {
				wd := time.Weekday(weekday.Int64)
				rule.ByWeekday = &wd
			}
			ev.Recurrence = rule
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
