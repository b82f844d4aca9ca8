package dataconsumer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

const consumerColumns = `id, name, description, created_by, is_admin_defined, is_private, created_at, updated_at`

func scanConsumer(row pgx.Row) (*DataConsumer, error) {
	var d DataConsumer
	err := row.Scan(
		&d.ID, &d.Name, &d.Description, &d.CreatedBy,
		&d.IsAdminDefined, &d.IsPrivate, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConsumerNotFound
		}
		return nil, fmt.Errorf("querying data consumer: %w", err)
	}
	return &d, nil
}

func duplicateName(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new data consumer record.
func (r *PostgresRepository) Create(ctx context.Context, d *DataConsumer) error {
	query := `
		INSERT INTO data_consumers (name, description, created_by, is_admin_defined, is_private)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		d.Name, d.Description, d.CreatedBy, d.IsAdminDefined, d.IsPrivate,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if duplicateName(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("inserting data consumer: %w", err)
	}

	return nil
}

// ListVisible retrieves all consumers visible to a user (their own plus every
// admin-defined record), ordered by name. A non-empty search term filters by
// case-insensitive substring match on the name.
func (r *PostgresRepository) ListVisible(ctx context.Context, userID uuid.UUID, search string) ([]DataConsumer, error) {
	query := `
		SELECT ` + consumerColumns + `
		FROM data_consumers
		WHERE (is_admin_defined = TRUE OR created_by = $1)`
	args := []any{userID}

	if search != "" {
		query += ` AND name ILIKE $2`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing data consumers: %w", err)
	}
	defer rows.Close()

	consumers := []DataConsumer{}
	for rows.Next() {
		d, err := scanConsumer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning data consumer row: %w", err)
		}
		consumers = append(consumers, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating data consumer rows: %w", err)
	}

	return consumers, nil
}

// GetVisible retrieves a single consumer if the user may see it.
func (r *PostgresRepository) GetVisible(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*DataConsumer, error) {
	query := `
		SELECT ` + consumerColumns + `
		FROM data_consumers
		WHERE id = $1 AND (is_admin_defined = TRUE OR created_by = $2 OR $3)`

	return scanConsumer(r.pool.QueryRow(ctx, query, id, userID, isAdmin))
}

// UpdateMutable applies a creator-or-admin conditional update and returns the
// new row. The admin-defined flag only changes when the caller supplied a
// value, which handlers restrict to admins.
func (r *PostgresRepository) UpdateMutable(ctx context.Context, id, userID uuid.UUID, isAdmin bool, upd Update) (*DataConsumer, error) {
	query := `
		UPDATE data_consumers
		SET name = $1, description = $2, is_private = $3,
		    is_admin_defined = COALESCE($4, is_admin_defined),
		    updated_at = NOW()
		WHERE id = $5 AND (created_by = $6 OR $7)
		RETURNING ` + consumerColumns

	d, err := scanConsumer(r.pool.QueryRow(ctx, query,
		upd.Name, upd.Description, upd.IsPrivate, upd.IsAdminDefined,
		id, userID, isAdmin,
	))
	if err != nil {
		if duplicateName(err) {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return d, nil
}

// DeleteMutable removes a consumer if the caller created it or is an admin.
func (r *PostgresRepository) DeleteMutable(ctx context.Context, id, userID uuid.UUID, isAdmin bool) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM data_consumers WHERE id = $1 AND (created_by = $2 OR $3)`,
		id, userID, isAdmin)
	if err != nil {
		return fmt.Errorf("deleting data consumer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrConsumerNotFound
	}

	return nil
}
