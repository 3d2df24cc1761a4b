package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/config"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	gormDB, mock := newTestDB(t)
	return NewGormStore(gormDB, config.MatcherConfig{ToleranceBeforeMinutes: 10, ToleranceAfterMinutes: 20}), mock
}

func TestGormStore_ListCancellations(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cancellations" WHERE request_id = $1 ORDER BY date`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "date", "reason", "actor", "created_at"}).
			AddRow(1, 7, "2026-09-07", "holiday", "prof.perez", now).
			AddRow(2, 7, "2026-09-14", "", "prof.perez", now))

	cancellations, err := s.ListCancellations(context.Background(), 7, "")
	require.NoError(t, err)
	require.Len(t, cancellations, 2)
	assert.Equal(t, "2026-09-07", cancellations[0].Date)
	assert.Equal(t, "holiday", cancellations[0].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListCancellations_FilterByDate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cancellations" WHERE request_id = $1 AND date = $2 ORDER BY date`)).
		WithArgs(int64(7), "2026-09-07").
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "date", "reason", "actor"}).
			AddRow(1, 7, "2026-09-07", "holiday", "prof.perez"))

	cancellations, err := s.ListCancellations(context.Background(), 7, "2026-09-07")
	require.NoError(t, err)
	require.Len(t, cancellations, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListLabs(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "labs" ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "first_pc", "last_pc", "free_use"}).
			AddRow(1, "LAB 1", 1, 40, false).
			AddRow(2, "LAB 2", 41, 60, true))

	labs, err := s.ListLabs(context.Background())
	require.NoError(t, err)
	require.Len(t, labs, 2)
	assert.Equal(t, "LAB 1", labs[0].Name)
	assert.True(t, labs[1].FreeUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}
