package vehicle

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus is the lifecycle of one analysis run.
type AnalysisStatus string

const (
	StatusPending    AnalysisStatus = "pending"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

// UploadMetadata is the optional vehicle information accepted alongside the
// photo upload.
type UploadMetadata struct {
	Make        string   `form:"make" json:"make,omitempty"`
	Model       string   `form:"model" json:"model,omitempty"`
	Year        int      `form:"year" json:"year,omitempty"`
	Trim        string   `form:"trim" json:"trim,omitempty"`
	AskingPrice *float64 `form:"asking_price" json:"asking_price,omitempty"`
}

// UploadResult acknowledges an accepted submission before the analysis runs.
type UploadResult struct {
	VehicleID  uuid.UUID      `json:"vehicle_id"`
	AnalysisID uuid.UUID      `json:"analysis_id"`
	Status     AnalysisStatus `json:"status"`
	PhotoCount int            `json:"photo_count"`
}

// Summary is one row of the vehicle listing.
type Summary struct {
	ID          uuid.UUID      `json:"id"`
	Make        string         `json:"make,omitempty"`
	Model       string         `json:"model,omitempty"`
	Year        int            `json:"year,omitempty"`
	AskingPrice *float64       `json:"asking_price,omitempty"`
	Status      AnalysisStatus `json:"status"`
	PhotoCount  int            `json:"photo_count"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AnalysisView is the externally visible state of an analysis run. Result is
// only present once the run completed.
type AnalysisView struct {
	ID          uuid.UUID       `json:"id"`
	VehicleID   uuid.UUID       `json:"vehicle_id"`
	Status      AnalysisStatus  `json:"status"`
	Stage       string          `json:"stage,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
