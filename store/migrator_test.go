package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/agenda/internal/profile"
)

func TestShouldApplyMigration(t *testing.T) {
	tests := []struct {
		file, current, target string
		want                  bool
	}{
		{"0.2.1", "0.1.3", "0.2.1", true},
		{"0.2.1", "0.2.1", "0.2.1", false},
		{"0.2.2", "0.2.0", "0.2.1", false},
		{"0.1.1", "", "0.2.1", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shouldApplyMigration(tt.file, tt.current, tt.target), "%+v", tt)
	}
}

func TestValidateMigrationFileName(t *testing.T) {
	assert.NoError(t, validateMigrationFileName("00__event_signal.sql"))
	assert.Error(t, validateMigrationFileName("event_signal.sql"))
	assert.Error(t, validateMigrationFileName("ab__event_signal.sql"))
}

func TestGetSchemaVersionOfMigrateScript(t *testing.T) {
	s := New(nil, &profile.Profile{Mode: "dev", Driver: "sqlite"})

	v, err := s.getSchemaVersionOfMigrateScript("migration/sqlite/0.2/00__event_signal.sql")
	require.NoError(t, err)
	assert.Equal(t, "0.2.1", v)

	v, err = s.getSchemaVersionOfMigrateScript("migration/sqlite/LATEST.sql")
	require.NoError(t, err)
	assert.Equal(t, "0.2.1", v)

	_, err = s.getSchemaVersionOfMigrateScript("migration/sqlite/0.2/xx__bad.sql")
	assert.Error(t, err)
}

func TestSplitSQL(t *testing.T) {
	script := `-- leading comment
CREATE TABLE a (x TEXT DEFAULT 'a;b'); -- trailing
INSERT INTO a VALUES ('it''s');

CREATE INDEX idx ON a (x)`

	got := splitSQL(script)
	require.Len(t, got, 3)
	assert.Equal(t, "CREATE TABLE a (x TEXT DEFAULT 'a;b')", got[0])
	assert.Equal(t, "INSERT INTO a VALUES ('it''s')", got[1])
	assert.Equal(t, "CREATE INDEX idx ON a (x)", got[2])
}
