package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invest-tracker/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// CycleError is one per-asset failure collected during a cycle.
type CycleError struct {
	Asset string `json:"asset"`
	Error string `json:"error"`
}

// CycleReport summarizes one reconciliation cycle.
type CycleReport struct {
	CycleID    string       `json:"cycle_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Duration   string       `json:"duration"`
	Holdings   int          `json:"holdings"`
	Created    int          `json:"created"`
	Updated    int          `json:"updated"`
	Unchanged  int          `json:"unchanged"`
	Skipped    int          `json:"skipped"`
	Errors     []CycleError `json:"errors"`
}

func newCycleReport(cycleID string, started time.Time) *CycleReport {
	return &CycleReport{
		CycleID:   cycleID,
		StartedAt: started,
		Errors:    []CycleError{},
	}
}

func (r *CycleReport) count(outcome Outcome) {
	switch outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeSkipped:
		r.Skipped++
	}
}

func (r *CycleReport) addError(asset string, err error) {
	r.Errors = append(r.Errors, CycleError{Asset: asset, Error: err.Error()})
}

func (r *CycleReport) finish(now time.Time) {
	r.FinishedAt = now
	r.Duration = now.Sub(r.StartedAt).String()
}

// Archiver writes cycle reports to object storage.
type Archiver struct {
	client storage.Client
	bucket string
	log    *zap.Logger
}

// NewArchiver creates a report archiver writing into the given bucket.
func NewArchiver(client storage.Client, bucket string, log *zap.Logger) *Archiver {
	return &Archiver{client: client, bucket: bucket, log: log}
}

// Archive uploads the report as a JSON object. The object name embeds the
// start time and cycle id so reports list chronologically.
func (a *Archiver) Archive(ctx context.Context, report *CycleReport) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("archive report: check bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("archive report: create bucket: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("archive report: marshal: %w", err)
	}

	objectName := fmt.Sprintf("reports/%s-%s.json",
		report.StartedAt.UTC().Format("20060102T150405Z"), report.CycleID)

	_, err = a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("archive report: upload: %w", err)
	}

	a.log.Info("Cycle report archived",
		zap.String("cycle_id", report.CycleID),
		zap.String("object", objectName))
	return nil
}
