package model

import "time"

type ImportStatus string

const (
	ImportStatusUploaded   ImportStatus = "UPLOADED"
	ImportStatusParsedOK   ImportStatus = "PARSED_OK"
	ImportStatusParsedFail ImportStatus = "PARSED_FAIL"
)

// Import tracks a spreadsheet archived to object storage and ingested by the worker.
type Import struct {
	ID           int64        `json:"id" db:"id"`
	FileName     string       `json:"file_name" db:"file_name"`
	S3Path       string       `json:"s3_path" db:"s3_path"`
	Status       ImportStatus `json:"status" db:"status"`
	RecordCount  int          `json:"record_count" db:"record_count"`
	ErrorMessage *string      `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
