package database_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/forkful/backend/internal/database"
	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/internal/testhelpers"
	"github.com/pageza/forkful/backend/migrations"
)

func TestMigrationFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_index.sql":          {Data: []byte("")},
		"001_init.sql":               {Data: []byte("")},
		"001_init_rollback.sql":      {Data: []byte("")},
		"README.md":                  {Data: []byte("")},
		"002_add_index_rollback.sql": {Data: []byte("")},
	}

	files, err := database.MigrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_add_index.sql"}, files)
	assert.Equal(t, "001_init_rollback.sql", database.RollbackFile("001_init.sql"))
}

func TestEmbeddedMigrationsHaveRollbacks(t *testing.T) {
	files, err := database.MigrationFiles(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		_, err := migrations.FS.Open(database.RollbackFile(f))
		assert.NoError(t, err, "missing rollback for %s", f)
	}
}

func TestSQLiteAutoMigrate(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)

	for _, m := range database.AllModels() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestPostgresMigrations(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)

	user := testhelpers.CreateUser(t, db, "pguser")
	recipe := testhelpers.CreateRecipe(t, db, user.ID)

	// re-running is a no-op
	require.NoError(t, database.RunMigrations(db))

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Where("author_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// cascades come from the SQL schema
	require.NoError(t, db.Delete(&models.User{}, "id = ?", user.ID).Error)
	require.NoError(t, db.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
