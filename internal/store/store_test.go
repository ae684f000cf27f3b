package store

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"visitor-management-backend/internal/model"
)

// newTestStore opens a per-test in-memory SQLite database.
func newTestStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.KVEntry{}, &model.PushSubscription{}))
	return NewGormStore(db)
}

func TestLoadVisitors_AbsentDocument(t *testing.T) {
	s := newTestStore(t)

	visitors, err := s.LoadVisitors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, visitors)
	assert.NotNil(t, visitors)
}

func TestSaveAndLoadVisitors_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := []model.Visitor{
		{ID: "1-a", CardNo: "A1", Name: "Jane Doe", CompanyName: "Acme", ToMeet: "HR", Purpose: "Interview", InTime: "2024-01-01T10:00:00Z"},
		{ID: "2-b", CardNo: "B2", Name: "Li Wei", Phone: "555-0101", CompanyName: "Globex", ToMeet: "IT", Purpose: "Audit", InTime: "2024-01-02T09:00:00Z", OutTime: "2024-01-02T11:00:00Z"},
	}
	require.NoError(t, s.SaveVisitors(ctx, in))

	out, err := s.LoadVisitors(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveVisitors_OverwritesWholeDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveVisitors(ctx, []model.Visitor{{ID: "1", Name: "First", InTime: "2024-01-01T10:00:00Z"}}))
	require.NoError(t, s.SaveVisitors(ctx, []model.Visitor{{ID: "2", Name: "Second", InTime: "2024-01-02T10:00:00Z"}}))

	out, err := s.LoadVisitors(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2", out[0].ID)
}

func TestLoadVisitors_CorruptDocumentIsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := model.KVEntry{Key: KeyVisitors, Value: "{not json]"}
	require.NoError(t, s.DB().Create(&entry).Error)

	visitors, err := s.LoadVisitors(ctx)
	require.NoError(t, err)
	assert.Empty(t, visitors)
}

func TestSaveVisitors_ProbeLeavesNoTrace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveVisitors(ctx, []model.Visitor{{ID: "1", InTime: "2024-01-01T10:00:00Z"}}))

	var count int64
	require.NoError(t, s.DB().Model(&model.KVEntry{}).Where("key = ?", probeKey).Count(&count).Error)
	assert.Zero(t, count)
}

func TestToMeetOptions_RoundTripAndCorrupt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	options, err := s.LoadToMeetOptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, options)

	require.NoError(t, s.SaveToMeetOptions(ctx, []string{"HR", "IT"}))
	options, err = s.LoadToMeetOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"HR", "IT"}, options)

	require.NoError(t, s.DB().Model(&model.KVEntry{}).Where("key = ?", KeyToMeetOptions).Update("value", "oops").Error)
	options, err = s.LoadToMeetOptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, options)
}

// The disk-full path cannot be provoked on a real SQLite file, so the probe
// failure is simulated with sqlmock against the Postgres dialect.
func TestSaveVisitors_QuotaExhausted(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "kv_entries"`)).
		WillReturnError(fmt.Errorf("pq: could not extend file: No space left on device (SQLSTATE 53100)"))
	mock.ExpectRollback()

	err = s.SaveVisitors(context.Background(), []model.Visitor{{ID: "1"}})
	assert.ErrorIs(t, err, ErrStorageQuota)
	assert.NoError(t, mock.ExpectationsWereMet())
}
