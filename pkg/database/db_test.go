package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB("", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func TestUpsertUsage(t *testing.T) {
	db := testDB(t)
	key := APIKey{Key: "k.sig", Name: "k"}
	require.NoError(t, db.Create(&key).Error)

	require.NoError(t, UpsertUsage(db, key.ID, "2024-03-02", UsageDelta{Positions: 2, People: 10, HoursPlanned: 48}))
	require.NoError(t, UpsertUsage(db, key.ID, "2024-03-02", UsageDelta{Positions: 3, People: 5, HoursPlanned: 24}))
	require.NoError(t, UpsertUsage(db, key.ID, "2024-03-03", UsageDelta{Positions: 1, People: 1, HoursPlanned: 1}))

	usage, err := UsageHistory(db, key.ID)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	assert.Equal(t, "2024-03-03", usage[0].Date)
	today := usage[1]
	assert.Equal(t, 2, today.RequestCount)
	assert.Equal(t, 5, today.TotalPositions)
	assert.Equal(t, 15, today.TotalPeople)
	assert.Equal(t, 72, today.HoursPlanned)
}

func TestRevokeKey(t *testing.T) {
	db := testDB(t)
	key := APIKey{Key: "k.sig", Name: "k"}
	require.NoError(t, db.Create(&key).Error)

	found, err := RevokeKey(db, key.ID)
	require.NoError(t, err)
	assert.True(t, found)

	var stored APIKey
	require.NoError(t, db.First(&stored, key.ID).Error)
	assert.NotNil(t, stored.RevokedAt)

	found, err = RevokeKey(db, key.ID)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = RevokeKey(db, 999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRunLog(t *testing.T) {
	db := testDB(t)

	require.NoError(t, RecordRun(db, &RunLog{RunID: "a", Status: "ok", Days: 1}))
	require.NoError(t, RecordRun(db, &RunLog{RunID: "b", Status: "failed", ErrorKind: "infeasible"}))
	assert.Error(t, RecordRun(db, &RunLog{RunID: "a", Status: "ok"}))

	runs, err := RecentRuns(db, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].RunID)
	assert.Equal(t, "infeasible", runs[0].ErrorKind)

	runs, err = RecentRuns(db, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
