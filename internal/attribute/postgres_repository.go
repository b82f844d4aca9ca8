package attribute

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const attributeColumns = `id, user_id, key, value, where_used,
	file_path, file_name, file_type, file_size, created_at, updated_at`

func scanAttribute(row pgx.Row) (*Attribute, error) {
	var (
		a         Attribute
		whereUsed string
		filePath  *string
		fileName  *string
		fileType  *string
		fileSize  *int64
	)

	err := row.Scan(
		&a.ID, &a.UserID, &a.Key, &a.Value, &whereUsed,
		&filePath, &fileName, &fileType, &fileSize,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttributeNotFound
		}
		return nil, fmt.Errorf("querying attribute: %w", err)
	}

	a.WhereUsed = Decode(whereUsed)
	if filePath != nil {
		a.File = &FileRef{Path: *filePath}
		if fileName != nil {
			a.File.Name = *fileName
		}
		if fileType != nil {
			a.File.Type = *fileType
		}
		if fileSize != nil {
			a.File.Size = *fileSize
		}
	}

	return &a, nil
}

func fileFields(f *FileRef) (path, name, typ *string, size *int64) {
	if f == nil {
		return nil, nil, nil, nil
	}
	return &f.Path, &f.Name, &f.Type, &f.Size
}

// Create inserts a new attribute record. WhereUsed is normalized before the
// insert so the column always holds a flat JSON list.
func (r *PostgresRepository) Create(ctx context.Context, a *Attribute) error {
	a.WhereUsed = NormalizeStrings(a.WhereUsed)

	query := `
		INSERT INTO attributes (user_id, key, value, where_used,
		                        file_path, file_name, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	path, name, typ, size := fileFields(a.File)

	err := r.pool.QueryRow(ctx, query,
		a.UserID, a.Key, a.Value, Encode(a.WhereUsed),
		path, name, typ, size,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting attribute: %w", err)
	}

	return nil
}

// ListByUser retrieves all attributes owned by a user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Attribute, error) {
	query := `
		SELECT ` + attributeColumns + `
		FROM attributes
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing attributes: %w", err)
	}
	defer rows.Close()

	attrs := []Attribute{}
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning attribute row: %w", err)
		}
		attrs = append(attrs, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attribute rows: %w", err)
	}

	return attrs, nil
}

// GetOwned retrieves a single attribute if it is owned by the given user.
func (r *PostgresRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*Attribute, error) {
	query := `SELECT ` + attributeColumns + ` FROM attributes WHERE id = $1 AND user_id = $2`
	return scanAttribute(r.pool.QueryRow(ctx, query, id, userID))
}

// UpdateOwned applies an owner-conditional update and returns the new row.
// File columns are only replaced when a new attachment is provided.
func (r *PostgresRepository) UpdateOwned(ctx context.Context, id, userID uuid.UUID, upd Update) (*Attribute, error) {
	upd.WhereUsed = NormalizeStrings(upd.WhereUsed)

	query := `
		UPDATE attributes
		SET key = $1, value = $2, where_used = $3,
		    file_path = COALESCE($4, file_path),
		    file_name = COALESCE($5, file_name),
		    file_type = COALESCE($6, file_type),
		    file_size = COALESCE($7, file_size),
		    updated_at = NOW()
		WHERE id = $8 AND user_id = $9
		RETURNING ` + attributeColumns

	path, name, typ, size := fileFields(upd.File)

	return scanAttribute(r.pool.QueryRow(ctx, query,
		upd.Key, upd.Value, Encode(upd.WhereUsed),
		path, name, typ, size,
		id, userID,
	))
}

// DeleteOwned removes an attribute if it is owned by the given user.
func (r *PostgresRepository) DeleteOwned(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM attributes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting attribute: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAttributeNotFound
	}

	return nil
}
