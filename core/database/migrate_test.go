package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/surplusbot/migrations"
)

func TestListMigrationFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_bookings.up.sql": {Data: []byte("--")},
		"000001_init.up.sql":     {Data: []byte("--")},
		"000001_init.down.sql":   {Data: []byte("--")},
		"nested/000003_x.up.sql": {Data: []byte("--")},
		"README.md":              {Data: []byte("")},
	}
	assert.Equal(t, []string{"000001_init.up.sql", "000002_bookings.up.sql"}, listMigrationFiles(fsys, "."))
}

func TestCountApplied(t *testing.T) {
	files := []string{"000001_init.up.sql", "000002_bookings.up.sql", "000003_more.up.sql"}
	assert.Equal(t, 0, countApplied(files, 3, 3))
	assert.Equal(t, 2, countApplied(files, 1, 3))
	assert.Equal(t, 3, countApplied(files, 0, 3))
	assert.Equal(t, uint64(2), parseVersion("000002_bookings.up.sql"))
	assert.Equal(t, uint64(0), parseVersion("bogus.sql"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups := listMigrationFiles(migrations.FS, ".")
	assert.NotEmpty(t, ups)
	for _, up := range ups {
		down := up[:len(up)-len(".up.sql")] + ".down.sql"
		_, err := migrations.FS.Open(down)
		assert.NoError(t, err, "missing %s", down)
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", Name: "surplus", SSLMode: "disable"}
	assert.Equal(t, "user=u password=p host=db port=5432 dbname=surplus sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/surplus?sslmode=disable", cfg.URL())
}
