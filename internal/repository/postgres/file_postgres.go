package postgres

import (
	"context"
	"database/sql"
	"time"

	"filedrive/internal/model"
	"filedrive/internal/repository"
)

const fileColumns = `id, name, size, url, parent_path, storage_path, content_type, created_at, updated_at`

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*model.File, error) {
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Size,
		&f.URL,
		&f.ParentPath,
		&f.StoragePath,
		&f.ContentType,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Name,
		f.Size,
		f.URL,
		f.ParentPath,
		f.StoragePath,
		f.ContentType,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return scanFile(row)
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// FindByNameAndParent fetches the file named name inside parentPath.
func (r *FilePostgres) FindByNameAndParent(ctx context.Context, name, parentPath string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE name = $1 AND parent_path = $2 LIMIT 1`
	return scanFile(r.db.QueryRowContext(ctx, q, name, parentPath))
}

// UpdateURL sets url, size and updated_at on an existing row.
func (r *FilePostgres) UpdateURL(ctx context.Context, id, url string, size int64, updatedAt time.Time) (*model.File, error) {
	const q = `
		UPDATE files SET url = $2, size = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + fileColumns
	return scanFile(r.db.QueryRowContext(ctx, q, id, url, size, updatedAt))
}

// List returns files of one folder using LIMIT/OFFSET pagination and a total count.
func (r *FilePostgres) List(ctx context.Context, parentPath string, pq repository.PageQuery) (*repository.PageResult[model.File], error) {
	const qCount = `SELECT COUNT(*) FROM files WHERE parent_path = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, parentPath).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE parent_path = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, qList, parentPath, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.File]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a file by ID. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
