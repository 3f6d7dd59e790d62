package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"auction-analyzer/internal/domain/vehicle"
)

var ErrNotFound = errors.New("record not found")

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (VehiclePhoto) TableName() string {
	return "vehicle_photos"
}

func (Analysis) TableName() string {
	return "analyses"
}

type Vehicle struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Make        *string
	Model       *string
	Year        *int
	Trim        *string
	AskingPrice *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Photos []VehiclePhoto `gorm:"foreignKey:VehicleID"`
}

type VehiclePhoto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	VehicleID   uuid.UUID `gorm:"type:uuid;not null"`
	Filename    string    `gorm:"not null"`
	Category    string    `gorm:"not null"`
	ContentType *string
	SizeBytes   *int64
	StorageURL  *string
	CreatedAt   time.Time
}

type Analysis struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	VehicleID   uuid.UUID `gorm:"type:uuid;not null"`
	Status      string    `gorm:"not null"`
	Stage       *string
	Result      datatypes.JSON `gorm:"type:jsonb"`
	Error       *string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// CreateSubmission stores the vehicle, its photos and the pending analysis
// row in one transaction.
func (r *VehicleRepository) CreateSubmission(ctx context.Context, v *Vehicle, photos []VehiclePhoto, a *Analysis) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return fmt.Errorf("failed to create vehicle: %w", err)
		}
		for i := range photos {
			photos[i].VehicleID = v.ID
		}
		if len(photos) > 0 {
			if err := tx.Create(&photos).Error; err != nil {
				return fmt.Errorf("failed to create photos: %w", err)
			}
		}
		a.VehicleID = v.ID
		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("failed to create analysis: %w", err)
		}
		return nil
	})
}

func (r *VehicleRepository) GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	var v Vehicle
	err := r.db.WithContext(ctx).Preload("Photos").First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetLatestAnalysis returns the most recent analysis run for a vehicle.
func (r *VehicleRepository) GetLatestAnalysis(ctx context.Context, vehicleID uuid.UUID) (*Analysis, error) {
	var a Analysis
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *VehicleRepository) SetAnalysisStage(ctx context.Context, analysisID uuid.UUID, status vehicle.AnalysisStatus, stage string) error {
	return r.db.WithContext(ctx).
		Model(&Analysis{}).
		Where("id = ?", analysisID).
		Updates(map[string]interface{}{
			"status": string(status),
			"stage":  stage,
		}).Error
}

func (r *VehicleRepository) CompleteAnalysis(ctx context.Context, analysisID uuid.UUID, result datatypes.JSON) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&Analysis{}).
		Where("id = ?", analysisID).
		Updates(map[string]interface{}{
			"status":       string(vehicle.StatusCompleted),
			"stage":        string(vehicle.StatusCompleted),
			"result":       result,
			"completed_at": &now,
		}).Error
}

func (r *VehicleRepository) FailAnalysis(ctx context.Context, analysisID uuid.UUID, cause string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&Analysis{}).
		Where("id = ?", analysisID).
		Updates(map[string]interface{}{
			"status":       string(vehicle.StatusFailed),
			"error":        cause,
			"completed_at": &now,
		}).Error
}

func (r *VehicleRepository) SetPhotoStorageURL(ctx context.Context, photoID uuid.UUID, url string) error {
	return r.db.WithContext(ctx).
		Model(&VehiclePhoto{}).
		Where("id = ?", photoID).
		Update("storage_url", url).Error
}

// ListVehicles returns vehicles newest first alongside their latest analysis
// status.
func (r *VehicleRepository) ListVehicles(ctx context.Context, limit, offset int) ([]Vehicle, map[uuid.UUID]Analysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var vehicles []Vehicle
	err := r.db.WithContext(ctx).
		Preload("Photos").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&vehicles).Error
	if err != nil {
		return nil, nil, err
	}
	if len(vehicles) == 0 {
		return vehicles, map[uuid.UUID]Analysis{}, nil
	}

	ids := make([]uuid.UUID, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.ID)
	}

	var analyses []Analysis
	err = r.db.WithContext(ctx).
		Where("vehicle_id IN ?", ids).
		Order("created_at ASC").
		Find(&analyses).Error
	if err != nil {
		return nil, nil, err
	}

	// Later rows overwrite earlier ones, leaving the newest run per vehicle.
	latest := make(map[uuid.UUID]Analysis, len(vehicles))
	for _, a := range analyses {
		latest[a.VehicleID] = a
	}
	return vehicles, latest, nil
}

func (r *VehicleRepository) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Vehicle{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
