package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fairwatch/internal/config"
)

func TestOpenStore_Memory(t *testing.T) {
	st, err := openStore(context.Background(), config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	defer st.Close()

	points, err := st.GetHistory(context.Background(), "loans", "calibration", 0)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestOpenStore_SQLite(t *testing.T) {
	st, err := openStore(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "fairwatch.db"),
	})
	require.NoError(t, err)
	assert.NoError(t, st.Close())
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), config.StoreConfig{Driver: "cassandra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}
