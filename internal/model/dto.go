package model

import "time"

type ImportJob struct {
	ImportID int64  `json:"import_id"`
	S3Path   string `json:"s3_path"`
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type ColumnFilterRequest struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

type SortRequest struct {
	Column string `json:"column" binding:"required"`
}

type PageRequest struct {
	Page int `json:"page"`
}

// PageSizeRequest uses 0 for the "all rows" mode.
type PageSizeRequest struct {
	PageSize int `json:"page_size"`
}

type MoveColumnRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type ResizeColumnRequest struct {
	Column string `json:"column" binding:"required"`
	Width  int    `json:"width"`
}

type SelectRequest struct {
	Label string `json:"label" binding:"required"`
}

type SummaryRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type SummaryResponse struct {
	Summary   string `json:"summary"`
	Available bool   `json:"available"`
}

type UploadResponse struct {
	Inserted int `json:"inserted"`
	Total    int `json:"total"`
}
