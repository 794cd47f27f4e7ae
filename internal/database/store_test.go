package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/app/repository"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/config"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/storage"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		driver string
		check  func(t *testing.T, s any)
	}{
		{config.DriverMemory, func(t *testing.T, s any) { assert.IsType(t, &storage.MemoryStore{}, s) }},
		{config.DriverFile, func(t *testing.T, s any) { assert.IsType(t, &storage.FileStore{}, s) }},
		{config.DriverSQLite, func(t *testing.T, s any) { assert.IsType(t, &repository.SnapshotRepository{}, s) }},
	}
	for _, tc := range cases {
		t.Run(tc.driver, func(t *testing.T) {
			cfg := config.Default()
			cfg.StoreDriver = tc.driver
			cfg.StorePath = filepath.Join(t.TempDir(), "state")

			s, closeFn, err := OpenStore(ctx, cfg)
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeFn()) }()
			tc.check(t, s)

			require.NoError(t, s.Set(ctx, cfg.TimerKey, []byte(`{"status":"idle"}`)))
			got, err := s.Get(ctx, cfg.TimerKey)
			require.NoError(t, err)
			assert.JSONEq(t, `{"status":"idle"}`, string(got))
		})
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.StoreDriver = "redis"
	_, _, err := OpenStore(context.Background(), cfg)
	assert.Error(t, err)

	_, err = InitGorm(cfg)
	assert.Error(t, err)
}
