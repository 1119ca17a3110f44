package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/jmoiron/sqlx"
)

// insertChunk bounds the placeholders in one multi-row INSERT.
const insertChunk = 200

const recordColumns = `start_date, ac, tempo_aos, order_ps, base, partnumber, analise_mtl,
	tempo_material, range_text, hora_req, hora_pouso, hora_rec, prioridade, observacao, mtl_utilizado`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FetchAll(ctx context.Context) ([]model.Record, error) {
	query := `SELECT id, ` + recordColumns + ` FROM aos_records ORDER BY id DESC`

	records := []model.Record{}
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, errors.NewStoreError("fetch", err)
	}

	return records, nil
}

func (r *Repository) InsertMany(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewStoreError("insert", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO aos_records (` + recordColumns + `)
		VALUES (:start_date, :ac, :tempo_aos, :order_ps, :base, :partnumber, :analise_mtl,
		:tempo_material, :range_text, :hora_req, :hora_pouso, :hora_rec, :prioridade, :observacao, :mtl_utilizado)`

	for start := 0; start < len(records); start += insertChunk {
		end := start + insertChunk
		if end > len(records) {
			end = len(records)
		}
		if _, err := tx.NamedExecContext(ctx, query, records[start:end]); err != nil {
			return errors.NewStoreError("insert", err)
		}
	}

	return errors.NewStoreError("insert", tx.Commit())
}

func (r *Repository) DeleteOne(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM aos_records WHERE id = ?`, id)
	if err != nil {
		return errors.NewStoreError("delete", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewStoreError("delete", err)
	}
	if n == 0 {
		return errors.NewStoreError("delete", errors.ErrRecordNotFound)
	}

	return nil
}

func (r *Repository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM aos_records`)
	return errors.NewStoreError("delete_all", err)
}

func (r *Repository) CreateImport(ctx context.Context, fileName, s3Path string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO imports (file_name, s3_path, status) VALUES (?, ?, ?)`,
		fileName, s3Path, model.ImportStatusUploaded)
	if err != nil {
		return 0, errors.NewStoreError("create_import", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.NewStoreError("create_import", err)
	}

	return id, nil
}

func (r *Repository) UpdateImportStatus(ctx context.Context, id int64, status model.ImportStatus, recordCount int, errorMessage *string) error {
	query := `UPDATE imports SET status = ?, record_count = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, status, recordCount, errorMessage, id)
	return errors.NewStoreError("update_import", err)
}

func (r *Repository) GetImport(ctx context.Context, id int64) (*model.Import, error) {
	query := `SELECT id, file_name, s3_path, status, record_count, error_message, created_at, updated_at
		FROM imports WHERE id = ?`

	var imp model.Import
	if err := r.db.GetContext(ctx, &imp, query, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewStoreError("get_import", errors.ErrImportNotFound)
		}
		return nil, errors.NewStoreError("get_import", err)
	}

	return &imp, nil
}
