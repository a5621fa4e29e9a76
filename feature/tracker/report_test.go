package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"invest-tracker/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleReport() *CycleReport {
	report := newCycleReport("cycle-1", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	report.Holdings = 3
	report.count(OutcomeCreated)
	report.count(OutcomeUpdated)
	report.count(OutcomeSkipped)
	report.finish(time.Date(2024, 6, 1, 10, 0, 2, 0, time.UTC))
	return report
}

func TestReportCounts(t *testing.T) {
	report := sampleReport()
	report.addError("BAD", errors.New("boom"))

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Unchanged)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, "2s", report.Duration)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "BAD", report.Errors[0].Asset)
}

func TestArchiver(t *testing.T) {
	t.Run("Existing bucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "invest-reports").Return(true, nil)
		client.On("PutObject", mock.Anything, "invest-reports",
			"reports/20240601T100000Z-cycle-1.json",
			mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, nil)

		archiver := NewArchiver(client, "invest-reports", zap.NewNop())
		err := archiver.Archive(context.Background(), sampleReport())

		assert.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("Bucket created on demand", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "invest-reports").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "invest-reports", mock.Anything).Return(nil)
		client.On("PutObject", mock.Anything, "invest-reports",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, nil)

		archiver := NewArchiver(client, "invest-reports", zap.NewNop())
		err := archiver.Archive(context.Background(), sampleReport())

		assert.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("Upload failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "invest-reports").Return(true, nil)
		client.On("PutObject", mock.Anything, "invest-reports",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("upload failed"))

		archiver := NewArchiver(client, "invest-reports", zap.NewNop())
		err := archiver.Archive(context.Background(), sampleReport())

		assert.Error(t, err)
	})
}
