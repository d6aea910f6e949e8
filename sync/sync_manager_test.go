package sync

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupSessionCacheRefusesLiveSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT status FROM gaming_sessions WHERE id = \$1`).
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("active"))

	sm := NewSyncManager(nil, db)
	err = sm.CleanupSessionCache("abc123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "still active")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupSessionCacheUnknownSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT status FROM gaming_sessions WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	sm := NewSyncManager(nil, db)
	err = sm.CleanupSessionCache("nope")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupFinishedSessionsNothingToDo(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM gaming_sessions WHERE status IN`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// No terminal sessions means Redis is never touched, a nil client is fine
	sm := NewSyncManager(nil, db)
	assert.NoError(t, sm.CleanupFinishedSessions())
	assert.NoError(t, mock.ExpectationsWereMet())
}
