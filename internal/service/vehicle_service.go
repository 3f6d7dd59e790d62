package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"auction-analyzer/internal/analysis"
	"auction-analyzer/internal/domain/vehicle"
	"auction-analyzer/internal/repository"
	"auction-analyzer/internal/storage"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const minVehicleYear = 1900

// PhotoUpload is one uploaded file as received by the transport layer.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Analyzer runs the full analysis pipeline. Satisfied by
// analysis.Orchestrator.
type Analyzer interface {
	Analyze(ctx context.Context, inputs []analysis.PhotoInput, meta *analysis.Metadata, progress analysis.ProgressFunc) (*analysis.Result, error)
}

// VehicleService accepts submissions, persists them and drives the analysis
// pipeline in the background.
type VehicleService struct {
	repo      *repository.VehicleRepository
	analyzer  Analyzer
	store     *storage.R2Client
	log       zerolog.Logger
	maxPhotos int
	now       func() time.Time
}

func NewVehicleService(
	repo *repository.VehicleRepository,
	analyzer Analyzer,
	store *storage.R2Client,
	log zerolog.Logger,
	maxPhotos int,
) *VehicleService {
	return &VehicleService{
		repo:      repo,
		analyzer:  analyzer,
		store:     store,
		log:       log,
		maxPhotos: maxPhotos,
		now:       time.Now,
	}
}

// SubmitVehicle validates and stores a submission, then launches the
// analysis run in the background. The returned result acknowledges
// acceptance, not completion.
func (s *VehicleService) SubmitVehicle(ctx context.Context, uploads []PhotoUpload, meta vehicle.UploadMetadata) (*vehicle.UploadResult, error) {
	if err := s.validate(uploads, meta); err != nil {
		return nil, err
	}

	v := vehicleRow(meta)
	photos := photoRows(uploads)
	a := &repository.Analysis{
		ID:     uuid.New(),
		Status: string(vehicle.StatusPending),
	}

	if err := s.repo.CreateSubmission(ctx, v, photos, a); err != nil {
		s.log.Error().Err(err).Msg("failed to persist submission")
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}

	s.log.Info().
		Str("vehicle_id", v.ID.String()).
		Str("analysis_id", a.ID.String()).
		Int("photo_count", len(uploads)).
		Msg("accepted vehicle submission")

	go s.runAnalysis(v.ID, a.ID, uploads, photos, meta)

	return &vehicle.UploadResult{
		VehicleID:  v.ID,
		AnalysisID: a.ID,
		Status:     vehicle.StatusPending,
		PhotoCount: len(uploads),
	}, nil
}

func (s *VehicleService) validate(uploads []PhotoUpload, meta vehicle.UploadMetadata) error {
	if len(uploads) == 0 {
		return fmt.Errorf("%w: at least one photo is required", ErrInvalidInput)
	}
	if len(uploads) > s.maxPhotos {
		return fmt.Errorf("%w: at most %d photos per vehicle", ErrInvalidInput, s.maxPhotos)
	}
	for _, u := range uploads {
		if len(u.Data) == 0 {
			return fmt.Errorf("%w: photo %q is empty", ErrInvalidInput, u.Filename)
		}
	}
	if meta.Year != 0 {
		if maxYear := s.now().Year() + 1; meta.Year < minVehicleYear || meta.Year > maxYear {
			return fmt.Errorf("%w: year must be between %d and %d", ErrInvalidInput, minVehicleYear, maxYear)
		}
	}
	if meta.AskingPrice != nil && *meta.AskingPrice < 0 {
		return fmt.Errorf("%w: asking_price cannot be negative", ErrInvalidInput)
	}
	return nil
}

// runAnalysis is the background half of a submission. It owns its context:
// the request that accepted the upload has already returned.
func (s *VehicleService) runAnalysis(vehicleID, analysisID uuid.UUID, uploads []PhotoUpload, photos []repository.VehiclePhoto, meta vehicle.UploadMetadata) {
	ctx := context.Background()
	log := s.log.With().
		Str("vehicle_id", vehicleID.String()).
		Str("analysis_id", analysisID.String()).
		Logger()

	s.uploadPhotos(ctx, vehicleID, uploads, photos, log)

	inputs := make([]analysis.PhotoInput, 0, len(uploads))
	for _, u := range uploads {
		inputs = append(inputs, analysis.PhotoInput{
			Filename:    u.Filename,
			ContentType: u.ContentType,
			Data:        u.Data,
		})
	}

	progress := func(stage analysis.RunStage) {
		status := vehicle.StatusProcessing
		if stage == analysis.StageComplete {
			return // CompleteAnalysis below records the terminal state
		}
		if err := s.repo.SetAnalysisStage(ctx, analysisID, status, string(stage)); err != nil {
			log.Error().Err(err).Str("run_stage", string(stage)).Msg("failed to persist stage")
		}
	}

	result, err := s.analyzer.Analyze(ctx, inputs, analysisMetadata(meta), progress)
	if err != nil {
		log.Error().Err(err).Msg("analysis failed")
		if dbErr := s.repo.FailAnalysis(ctx, analysisID, err.Error()); dbErr != nil {
			log.Error().Err(dbErr).Msg("failed to record analysis failure")
		}
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal analysis result")
		if dbErr := s.repo.FailAnalysis(ctx, analysisID, "internal error"); dbErr != nil {
			log.Error().Err(dbErr).Msg("failed to record analysis failure")
		}
		return
	}

	if err := s.repo.CompleteAnalysis(ctx, analysisID, datatypes.JSON(payload)); err != nil {
		log.Error().Err(err).Msg("failed to store analysis result")
		return
	}

	log.Info().
		Str("recommendation", string(result.ROI.Recommendation)).
		Msg("analysis stored")
}

// uploadPhotos pushes the originals to object storage. Best effort: a
// missing bucket never blocks the analysis.
func (s *VehicleService) uploadPhotos(ctx context.Context, vehicleID uuid.UUID, uploads []PhotoUpload, photos []repository.VehiclePhoto, log zerolog.Logger) {
	if s.store == nil {
		return
	}
	for i, u := range uploads {
		key := fmt.Sprintf("vehicles/%s/photos/%s", vehicleID, u.Filename)
		url, err := s.store.Upload(ctx, key, bytes.NewReader(u.Data), int64(len(u.Data)), u.ContentType)
		if err != nil {
			log.Warn().Err(err).Str("filename", u.Filename).Msg("photo upload failed")
			continue
		}
		if err := s.repo.SetPhotoStorageURL(ctx, photos[i].ID, url); err != nil {
			log.Error().Err(err).Str("filename", u.Filename).Msg("failed to store photo url")
		}
	}
}

// GetAnalysis returns the latest analysis run for a vehicle.
func (s *VehicleService) GetAnalysis(ctx context.Context, vehicleID uuid.UUID) (*vehicle.AnalysisView, error) {
	a, err := s.repo.GetLatestAnalysis(ctx, vehicleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: no analysis for vehicle %s", ErrNotFound, vehicleID)
	}
	if err != nil {
		return nil, err
	}
	return analysisView(a), nil
}

// GetResult returns the completed pipeline output for a vehicle, unmarshalled.
func (s *VehicleService) GetResult(ctx context.Context, vehicleID uuid.UUID) (*analysis.Result, error) {
	view, err := s.GetAnalysis(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if view.Status != vehicle.StatusCompleted || len(view.Result) == 0 {
		return nil, fmt.Errorf("%w: analysis for vehicle %s has not completed", ErrNotFound, vehicleID)
	}
	var result analysis.Result
	if err := json.Unmarshal(view.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return &result, nil
}

func (s *VehicleService) ListVehicles(ctx context.Context, limit, offset int) ([]vehicle.Summary, error) {
	vehicles, latest, err := s.repo.ListVehicles(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	summaries := make([]vehicle.Summary, 0, len(vehicles))
	for _, v := range vehicles {
		summary := vehicle.Summary{
			ID:          v.ID,
			AskingPrice: v.AskingPrice,
			Status:      vehicle.StatusPending,
			PhotoCount:  len(v.Photos),
			CreatedAt:   v.CreatedAt,
		}
		if v.Make != nil {
			summary.Make = *v.Make
		}
		if v.Model != nil {
			summary.Model = *v.Model
		}
		if v.Year != nil {
			summary.Year = *v.Year
		}
		if a, ok := latest[v.ID]; ok {
			summary.Status = vehicle.AnalysisStatus(a.Status)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *VehicleService) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteVehicle(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: vehicle %s", ErrNotFound, id)
	}
	return err
}

func vehicleRow(meta vehicle.UploadMetadata) *repository.Vehicle {
	v := &repository.Vehicle{ID: uuid.New(), AskingPrice: meta.AskingPrice}
	if meta.Make != "" {
		v.Make = &meta.Make
	}
	if meta.Model != "" {
		v.Model = &meta.Model
	}
	if meta.Year != 0 {
		v.Year = &meta.Year
	}
	if meta.Trim != "" {
		v.Trim = &meta.Trim
	}
	return v
}

func photoRows(uploads []PhotoUpload) []repository.VehiclePhoto {
	photos := make([]repository.VehiclePhoto, 0, len(uploads))
	for _, u := range uploads {
		photo := repository.VehiclePhoto{
			ID:       uuid.New(),
			Filename: u.Filename,
			Category: string(analysis.CategorizeFilename(u.Filename)),
		}
		if u.ContentType != "" {
			photo.ContentType = &u.ContentType
		}
		if size := int64(len(u.Data)); size > 0 {
			photo.SizeBytes = &size
		}
		photos = append(photos, photo)
	}
	return photos
}

func analysisMetadata(meta vehicle.UploadMetadata) *analysis.Metadata {
	return &analysis.Metadata{
		Make:        meta.Make,
		Model:       meta.Model,
		Year:        meta.Year,
		Trim:        meta.Trim,
		AskingPrice: meta.AskingPrice,
	}
}

func analysisView(a *repository.Analysis) *vehicle.AnalysisView {
	view := &vehicle.AnalysisView{
		ID:          a.ID,
		VehicleID:   a.VehicleID,
		Status:      vehicle.AnalysisStatus(a.Status),
		Result:      json.RawMessage(a.Result),
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
	}
	if a.Stage != nil {
		view.Stage = *a.Stage
	}
	if a.Error != nil {
		view.Error = *a.Error
	}
	return view
}
