package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared&_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openMemory(t)

	err := configurePool(db, &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           20,
		DBConnMaxLifetimeMinutes: 15,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_Defaults(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000002_second.up.sql":   {Data: []byte("SELECT 2;")},
		"migrations/000002_second.down.sql": {Data: []byte("SELECT -2;")},
		"migrations/000001_first.up.sql":    {Data: []byte("SELECT 1;")},
		"migrations/000001_first.down.sql":  {Data: []byte("SELECT -1;")},
		"migrations/README.md":              {Data: []byte("ignored")},
		"migrations/bad.up.sql":             {Data: []byte("ignored")},
	}

	got, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "SELECT -1;", got[0].DownScript)
	assert.Equal(t, "000002_second", got[1].String())
}

func TestLoadMigrations_MissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/000001_first.up.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := loadMigrations(fsys)
	assert.Error(t, err)
}

func TestEmbeddedMigrationsRegistered(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	for i, m := range all {
		assert.Equal(t, i+1, m.Version, "migrations must be contiguous")
		assert.NotEmpty(t, m.UpScript)
		assert.NotEmpty(t, m.DownScript)
	}
	last := GetMigrationByVersion(len(all))
	require.NotNil(t, last)
	assert.Contains(t, last.UpScript, "trade_requests")
	assert.Nil(t, GetMigrationByVersion(9999))
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantSQL  bool
		wantAuto bool
		wantErr  bool
	}{
		{"hybrid development", config.Config{Env: "development"}, true, true, false},
		{"hybrid production", config.Config{Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"sql only", config.Config{Env: "development", DBSchemaMode: "sql"}, true, false, false},
		{"auto development", config.Config{Env: "development", DBSchemaMode: "auto"}, false, true, false},
		{"auto production refused", config.Config{Env: "prod", DBSchemaMode: "auto"}, false, false, true},
		{"sqlite ignores mode", config.Config{Env: "development", DBDriver: "sqlite", DBSchemaMode: "sql"}, false, true, false},
		{"unknown mode", config.Config{Env: "development", DBSchemaMode: "magic"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			runSQL, runAuto, err := schemaPolicy(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestApplySchema_SQLite(t *testing.T) {
	db := openMemory(t)
	cfg := &config.Config{Env: "test", DBDriver: "sqlite"}

	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	for _, table := range []string{"users", "trade_posts", "trade_requests"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("trade_requests", "idx_trade_requests_post_from"))

	require.NoError(t, db.Exec(`INSERT INTO users (id, username, email, password, created_at, updated_at)
		VALUES (1, 'a', 'a@example.com', 'x', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`).Error)
	err := db.Exec(`INSERT INTO trade_posts (title, description, images, tags, category, created_by, is_active, created_at, updated_at)
		VALUES ('t', 'd', '[]', '[]', 'general', 42, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`).Error
	assert.Error(t, err, "posts must reference an existing owner")
}

func TestGetSchemaStatus_SQLite(t *testing.T) {
	db := openMemory(t)
	status, err := GetSchemaStatus(context.Background(), db, &config.Config{Env: "development", DBDriver: "sqlite"})
	require.NoError(t, err)
	assert.False(t, status.WillRunSQL)
	assert.True(t, status.WillRunAutoMigrate)
	assert.Empty(t, status.PendingMigrations)
}

func TestReadDB(t *testing.T) {
	t.Cleanup(func() { SetReadDB(nil) })
	assert.Nil(t, GetReadDB())

	db := openMemory(t)
	SetReadDB(db)
	assert.Same(t, db, GetReadDB())
}
