package background

import (
	"context"
	"io"
	"testing"
	"time"

	"bizgate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockOneTimeTokenRepo struct {
	mock.Mock
}

func (m *mockOneTimeTokenRepo) Create(ctx context.Context, token *models.OneTimeToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockOneTimeTokenRepo) Consume(ctx context.Context, tokenHash, purpose string) (*models.OneTimeToken, error) {
	args := m.Called(ctx, tokenHash, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OneTimeToken), args.Error(1)
}

func (m *mockOneTimeTokenRepo) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type mockAuthEventsRepo struct {
	mock.Mock
}

func (m *mockAuthEventsRepo) Create(ctx context.Context, event *models.AuthEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockAuthEventsRepo) ListUnarchivedBefore(ctx context.Context, cutoff string, limit int) ([]*models.AuthEvent, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuthEvent), args.Error(1)
}

func (m *mockAuthEventsRepo) MarkArchived(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type mockArchiveStorage struct {
	mock.Mock
}

func (m *mockArchiveStorage) Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize)
	return args.Error(0)
}

func (m *mockArchiveStorage) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}

func TestRegisterJobs_WithArchiveStorage(t *testing.T) {
	js := NewJobScheduler(&mockOneTimeTokenRepo{}, &mockAuthEventsRepo{}, &mockArchiveStorage{})
	defer js.Stop()

	assert.Contains(t, js.jobs, "one-time-token-purge")
	assert.Contains(t, js.jobs, "auth-event-archival")
	// Refresh-token rows are never deleted, so no job may touch them.
	assert.Len(t, js.jobs, 2)
}

func TestRegisterJobs_WithoutArchiveStorage(t *testing.T) {
	js := NewJobScheduler(&mockOneTimeTokenRepo{}, &mockAuthEventsRepo{}, nil)
	defer js.Stop()

	assert.Contains(t, js.jobs, "one-time-token-purge")
	assert.NotContains(t, js.jobs, "auth-event-archival")
	assert.Len(t, js.jobs, 1)
}

func TestPurgeExpiredOneTimeTokens(t *testing.T) {
	oneTime := &mockOneTimeTokenRepo{}
	oneTime.On("DeleteExpired", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		// A day of grace past expiry before rows go.
		return time.Since(cutoff) > 23*time.Hour
	})).Return(int64(4), nil)

	js := NewJobScheduler(oneTime, &mockAuthEventsRepo{}, nil)
	defer js.Stop()

	assert.NoError(t, js.purgeExpiredOneTimeTokens())
	oneTime.AssertExpectations(t)
}

func TestArchiveAuthEvents_BatchesAndMarks(t *testing.T) {
	events := []*models.AuthEvent{
		{ID: uuid.New(), Action: models.ActionSignIn},
		{ID: uuid.New(), Action: models.ActionLogout},
	}

	authEvents := &mockAuthEventsRepo{}
	authEvents.On("ListUnarchivedBefore", mock.Anything, archiveCutoff, archiveBatchSize).Return(events, nil).Once()
	authEvents.On("MarkArchived", mock.Anything, []uuid.UUID{events[0].ID, events[1].ID}).Return(nil)

	archive := &mockArchiveStorage{}
	archive.On("EnsureBucketExists", mock.Anything, archiveBucket).Return(nil)
	archive.On("Upload", mock.Anything, archiveBucket, mock.AnythingOfType("string"), mock.Anything, mock.AnythingOfType("int64")).Return(nil)

	js := NewJobScheduler(&mockOneTimeTokenRepo{}, authEvents, archive)
	defer js.Stop()

	assert.NoError(t, js.archiveAuthEvents())
	authEvents.AssertExpectations(t)
	archive.AssertExpectations(t)
}
