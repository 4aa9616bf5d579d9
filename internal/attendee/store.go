package attendee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/sqlsaturday/satops/internal/config"
	"go.uber.org/zap"
)

const columns = `barcode, order_id, first_name, last_name, email, company, job_title, ticket_type, printed_at, emailed_at`

// Store reads and writes attendees
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore wraps an open database handle
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Open connects to PostgreSQL and pings it
func Open(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database %s@%s:%d: %w", cfg.Name, cfg.Host, cfg.Port, err)
	}

	return NewStore(db, logger), nil
}

// Close closes the database handle
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// List returns the attendees matching f, ordered by last and first name
func (s *Store) List(ctx context.Context, f Filter) ([]Attendee, error) {
	query, args := listQuery(f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing attendees: %w", err)
	}
	defer rows.Close()

	var out []Attendee
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning attendee: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing attendees: %w", err)
	}

	s.logger.Debug("attendees listed", zap.Int("count", len(out)))
	return out, nil
}

func listQuery(f Filter) (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if name := strings.TrimSpace(f.Name); name != "" {
		where = append(where, "(first_name || ' ' || last_name) ILIKE "+arg(likePattern(name)))
	}
	if email := strings.TrimSpace(f.Email); email != "" {
		where = append(where, "email ILIKE "+arg(likePattern(email)))
	}
	if f.Unprinted {
		where = append(where, "printed_at IS NULL")
	}
	if f.Unemailed {
		where = append(where, "emailed_at IS NULL")
	}

	var b strings.Builder
	b.WriteString("SELECT " + columns + " FROM attendees")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY last_name, first_name, barcode")
	if f.Limit > 0 {
		b.WriteString(" LIMIT " + arg(f.Limit))
	}
	return b.String(), args
}

// likePattern escapes LIKE wildcards and wraps s for a substring match
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// Get returns the attendee with the given barcode
func (s *Store) Get(ctx context.Context, barcode string) (*Attendee, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM attendees WHERE barcode = $1", barcode)
	a, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting attendee %s: %w", barcode, err)
	}
	return &a, nil
}

const upsertQuery = `INSERT INTO attendees (barcode, order_id, first_name, last_name, email, company, job_title, ticket_type)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (barcode) DO UPDATE SET
	order_id = EXCLUDED.order_id,
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	email = EXCLUDED.email,
	company = EXCLUDED.company,
	job_title = EXCLUDED.job_title,
	ticket_type = EXCLUDED.ticket_type`

// Upsert inserts the attendee or updates its registration details. The printed
// and emailed timestamps of an existing row are kept.
func (s *Store) Upsert(ctx context.Context, a Attendee) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, upsertQuery,
		a.Barcode, a.OrderID, a.FirstName, a.LastName, a.Email, a.Company, a.JobTitle, a.TicketType)
	if err != nil {
		return fmt.Errorf("upserting attendee %s: %w", a.Barcode, err)
	}
	return nil
}

// MarkPrinted records when the attendee's SpeedPass was printed
func (s *Store) MarkPrinted(ctx context.Context, barcode string, at time.Time) error {
	return s.mark(ctx, "printed_at", barcode, at)
}

// MarkEmailed records when the attendee's SpeedPass was emailed
func (s *Store) MarkEmailed(ctx context.Context, barcode string, at time.Time) error {
	return s.mark(ctx, "emailed_at", barcode, at)
}

func (s *Store) mark(ctx context.Context, column, barcode string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, "UPDATE attendees SET "+column+" = $1 WHERE barcode = $2", at, barcode)
	if err != nil {
		return fmt.Errorf("updating %s for %s: %w", column, barcode, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s for %s: %w", column, barcode, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scan(r scanner) (Attendee, error) {
	var (
		a                  Attendee
		printed, emailed   sql.NullTime
		orderID, company   sql.NullString
		jobTitle, ticketTy sql.NullString
	)
	err := r.Scan(&a.Barcode, &orderID, &a.FirstName, &a.LastName, &a.Email,
		&company, &jobTitle, &ticketTy, &printed, &emailed)
	if err != nil {
		return a, err
	}
	a.OrderID = orderID.String
	a.Company = company.String
	a.JobTitle = jobTitle.String
	a.TicketType = ticketTy.String
	if printed.Valid {
		t := printed.Time
		a.PrintedAt = &t
	}
	if emailed.Valid {
		t := emailed.Time
		a.EmailedAt = &t
	}
	return a, nil
}
