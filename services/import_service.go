package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"

	"github.com/agentdouble/kpix/cache"
	"github.com/agentdouble/kpix/database"
	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"
	repository "github.com/agentdouble/kpix/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ImportFailedError reports a job that ended FAILED. It unwraps to the cause so
// callers still see the validation, conflict or not-found error behind it.
type ImportFailedError struct {
	JobID primitive.ObjectID
	Err   error
}

func (e *ImportFailedError) Error() string {
	return fmt.Sprintf("import job %s failed: %v", e.JobID.Hex(), e.Err)
}

func (e *ImportFailedError) Unwrap() error { return e.Err }

type ImportService interface {
	ImportKPIValues(ctx context.Context, p models.Principal, filename string, content []byte) (*models.ImportResult, error)
	ListJobs(ctx context.Context, p models.Principal) ([]models.ImportJob, error)
	GetJob(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.ImportJob, error)
	// OpenJobFile streams the archived upload of a job. The caller closes it.
	OpenJobFile(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.ImportJob, io.ReadCloser, error)
}

type importService struct {
	jobs    repository.ImportJobRepository
	kpis    repository.KPIRepository
	values  repository.KPIValueRepository
	tx      database.Transactor
	reports cache.ReportCache
	metrics *Metrics
	clock   engine.Clock
	logger  *zap.Logger
}

type ImportServiceDeps struct {
	Jobs    repository.ImportJobRepository
	KPIs    repository.KPIRepository
	Values  repository.KPIValueRepository
	Tx      database.Transactor
	Reports cache.ReportCache
	Metrics *Metrics
	Clock   engine.Clock
	Logger  *zap.Logger
}

func NewImportService(deps ImportServiceDeps) ImportService {
	return &importService{
		jobs:    deps.Jobs,
		kpis:    deps.KPIs,
		values:  deps.Values,
		tx:      deps.Tx,
		reports: deps.Reports,
		metrics: deps.Metrics,
		clock:   deps.Clock,
		logger:  deps.Logger,
	}
}

// ImportKPIValues archives the file, parses it and ingests every row inside a
// single transaction. Any bad row fails the whole job and nothing is committed.
func (s *importService) ImportKPIValues(ctx context.Context, p models.Principal, filename string, content []byte) (*models.ImportResult, error) {
	typ, err := DetectImportType(filename)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	job := &models.ImportJob{
		OrganizationID: p.OrganizationID,
		Type:           typ,
		Status:         models.ImportPending,
		Filename:       filename,
		CreatedBy:      p.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	fileID, err := s.jobs.UploadFile(ctx, p.OrganizationID, filename, bytes.NewReader(content), p.UserID)
	if err != nil {
		return nil, s.fail(ctx, job, err)
	}
	job.FileID = &fileID
	job.Status = models.ImportRunning
	job.UpdatedAt = s.clock.Now()
	if err := s.jobs.Update(ctx, job); err != nil {
		// The job never recorded the file, drop it.
		if derr := s.jobs.DeleteFile(ctx, fileID); derr != nil {
			s.logger.Warn("import_file_cleanup_failed", zap.String("file_id", fileID.Hex()), zap.Error(derr))
		}
		job.FileID = nil
		return nil, s.fail(ctx, job, err)
	}

	rows, err := ParseImport(typ, content)
	if err != nil {
		return nil, s.fail(ctx, job, err)
	}

	var stored []models.KPIValue
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		stored, err = s.ingest(ctx, p, rows)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, job, err)
	}

	job.Status = models.ImportSuccess
	job.Ingested = len(stored)
	job.ErrorMessage = ""
	job.UpdatedAt = s.clock.Now()
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}

	for _, v := range stored {
		s.metrics.ValuesSubmitted.WithLabelValues(string(v.Status), SourceImport).Inc()
	}
	s.metrics.ImportRows.Add(float64(len(stored)))
	s.metrics.ImportJobs.WithLabelValues(string(models.ImportSuccess)).Inc()
	invalidateReports(ctx, s.reports, s.logger, p.OrganizationID)

	s.logger.Info("import_completed",
		zap.String("job_id", job.ID.Hex()),
		zap.String("organization_id", p.OrganizationID.Hex()),
		zap.Int("ingested", len(stored)),
	)
	return &models.ImportResult{JobID: job.ID, Ingested: len(stored), Failed: 0, Errors: []string{}}, nil
}

// ingest runs inside the transaction. KPIs are looked up once per id.
func (s *importService) ingest(ctx context.Context, p models.Principal, rows []ImportRow) ([]models.KPIValue, error) {
	kpis := map[primitive.ObjectID]*models.KPI{}
	stored := make([]models.KPIValue, 0, len(rows))

	for _, row := range rows {
		parsed, err := row.parse()
		if err != nil {
			return nil, err
		}

		kpi, ok := kpis[parsed.kpiID]
		if !ok {
			kpi, err = s.kpis.GetByID(ctx, p.OrganizationID, parsed.kpiID)
			if err != nil {
				return nil, row.wrap(err)
			}
			kpis[parsed.kpiID] = kpi
		}

		value, err := newKPIValue(kpi, parsed.start, parsed.end, parsed.value, parsed.comment, s.clock.Now())
		if err != nil {
			return nil, row.wrap(err)
		}
		if err := s.values.Create(ctx, value); err != nil {
			return nil, row.wrap(err)
		}
		stored = append(stored, *value)
	}
	return stored, nil
}

// fail marks the job FAILED with the cause. It runs on the request ctx, outside
// the aborted transaction.
func (s *importService) fail(ctx context.Context, job *models.ImportJob, cause error) error {
	job.Status = models.ImportFailed
	job.Ingested = 0
	job.ErrorMessage = cause.Error()
	job.UpdatedAt = s.clock.Now()

	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Error("import_job_update_failed",
			zap.String("job_id", job.ID.Hex()),
			zap.Error(err),
		)
	}
	s.metrics.ImportJobs.WithLabelValues(string(models.ImportFailed)).Inc()

	s.logger.Error("import_failed",
		zap.String("job_id", job.ID.Hex()),
		zap.String("organization_id", job.OrganizationID.Hex()),
		zap.Error(cause),
	)
	return &ImportFailedError{JobID: job.ID, Err: cause}
}

func (s *importService) ListJobs(ctx context.Context, p models.Principal) ([]models.ImportJob, error) {
	return s.jobs.List(ctx, p.OrganizationID)
}

func (s *importService) GetJob(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.ImportJob, error) {
	return s.jobs.GetByID(ctx, p.OrganizationID, id)
}

func (s *importService) OpenJobFile(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.ImportJob, io.ReadCloser, error) {
	job, err := s.jobs.GetByID(ctx, p.OrganizationID, id)
	if err != nil {
		return nil, nil, err
	}
	if job.FileID == nil {
		return nil, nil, &engine.NotFoundError{Resource: "import file", ID: id.Hex()}
	}
	file, err := s.jobs.DownloadFile(ctx, *job.FileID)
	if err != nil {
		return nil, nil, err
	}
	return job, file, nil
}

func isNonFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
