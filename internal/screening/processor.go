package screening

import (
	"context"
	"errors"
	"fmt"

	"recruit-backend/internal/applications"
	"recruit-backend/internal/extract"
	"recruit-backend/internal/jobs"
	"recruit-backend/internal/shared/apperr"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/storage/object"
	"recruit-backend/internal/shared/telemetry"
)

// ApplicationStore loads applications and records screening outcomes.
type ApplicationStore interface {
	Load(ctx context.Context, appID string) (applications.Application, error)
	RecordScreening(ctx context.Context, appID string, res applications.ScreeningResult) (applications.Application, error)
}

type JobLoader interface {
	Load(ctx context.Context, jobID string) (jobs.Job, error)
}

// Processor runs one screening pass: extract, parse, score, record.
type Processor struct {
	Applications ApplicationStore
	Jobs         JobLoader
	Store        object.Store
	Parser       Parser
	Scorer       Scorer
}

func NewProcessor(apps ApplicationStore, jobStore JobLoader, store object.Store) *Processor {
	return &Processor{
		Applications: apps,
		Jobs:         jobStore,
		Store:        store,
		Parser:       NewTextParser(),
		Scorer:       KeywordScorer{},
	}
}

// Process screens the application's current resume. A missing application or
// resume is skipped, as is a result for a resume replaced mid-run. Unsupported resume formats are recorded as failed and
// not retried; other failures are recorded and returned.
func (p *Processor) Process(ctx context.Context, appID string) error {
	ctx, span := telemetry.StartSpan(ctx, "screening.process")
	defer span.End()

	fields := map[string]any{"application_id": appID}
	if id := telemetry.RequestID(ctx); id != "" {
		fields["request_id"] = id
	}

	app, err := p.Applications.Load(ctx, appID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			telemetry.Warn("screening.application_missing", fields)
			return nil
		}
		return err
	}
	if app.Resume == nil {
		telemetry.Warn("screening.resume_missing", fields)
		return nil
	}

	parsed, score, runErr := p.run(ctx, app)
	res := applications.ScreeningResult{ResumePath: app.Resume.StoragePath, Parsed: parsed, Score: score, Err: runErr}
	if _, err := p.Applications.RecordScreening(ctx, appID, res); err != nil {
		if errors.Is(err, applications.ErrStaleScreening) {
			fields["resume_path"] = res.ResumePath
			telemetry.Warn("screening.stale_result", fields)
			return nil
		}
		return fmt.Errorf("record screening: %w", err)
	}
	if runErr != nil {
		metrics.IncScreeningFailed()
		fields["error"] = runErr.Error()
		telemetry.Error("screening.failed", fields)
		if errors.Is(runErr, extract.ErrUnsupported) {
			return nil
		}
		return runErr
	}

	metrics.IncScreeningCompleted()
	fields["overall"] = score.Overall
	fields["scorer"] = score.Scorer
	telemetry.Info("screening.completed", fields)
	return nil
}

func (p *Processor) run(ctx context.Context, app applications.Application) (*applications.ParsedResume, *applications.ScreeningScore, error) {
	job, err := p.Jobs.Load(ctx, app.JobID)
	if err != nil {
		return nil, nil, fmt.Errorf("load job: %w", err)
	}
	text, err := extract.FromObject(ctx, p.Store, app.Resume.StoragePath, app.Resume.MimeType, app.Resume.FileName)
	if err != nil {
		return nil, nil, err
	}
	parsed, err := p.Parser.Parse(ctx, text, job.Skills)
	if err != nil {
		return nil, nil, fmt.Errorf("parse resume: %w", err)
	}
	score, err := p.Scorer.Score(ctx, job, parsed, text)
	if err != nil {
		return nil, nil, fmt.Errorf("score resume: %w", err)
	}
	return &parsed, &score, nil
}
