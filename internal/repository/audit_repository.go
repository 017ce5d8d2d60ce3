package repository

import (
	"context"
	"database/sql"
	"time"
)

// AuditRecord mirrors a row of the booking_audit table.  One row is
// written for every booking event consumed from the broker.
type AuditRecord struct {
	EventType     string
	BookingID     string
	PassengerName string
	RouteID       int
	Seats         int
	TotalFare     int
	OccurredAt    time.Time
}

// AuditRepo writes booking events to MySQL.  It only appends; the live
// booking state is never read back from the table.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the provided database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// EnsureSchema creates the booking_audit table when it does not exist.
func (r *AuditRepo) EnsureSchema(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS booking_audit (
        id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
        event_type VARCHAR(32) NOT NULL,
        booking_id VARCHAR(64) NOT NULL,
        passenger_name VARCHAR(100) NOT NULL,
        route_id INT NOT NULL,
        seats INT NOT NULL,
        total_fare INT NOT NULL,
        occurred_at DATETIME NOT NULL,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Insert appends rec and returns the generated row id.
func (r *AuditRepo) Insert(ctx context.Context, rec AuditRecord) (uint64, error) {
	const q = `INSERT INTO booking_audit (event_type, booking_id, passenger_name, route_id, seats, total_fare, occurred_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		rec.EventType, rec.BookingID, rec.PassengerName, rec.RouteID, rec.Seats, rec.TotalFare,
		rec.OccurredAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
