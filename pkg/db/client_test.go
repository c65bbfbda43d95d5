package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mangohub/mangostore-backend/pkg/config"
)

func TestNewWithSQLiteDriver(t *testing.T) {
	ctx := context.Background()

	client, err := New(ctx, config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:dbclient_" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(ctx))

	require.NoError(t, client.Exec(ctx, `CREATE TABLE smoke_entries (id TEXT PRIMARY KEY)`).Error)
	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Exec(`INSERT INTO smoke_entries (id) VALUES (?)`, uuid.NewString()).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, client.Raw(ctx, `SELECT COUNT(*) FROM smoke_entries`).Scan(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{
		Driver: "oracle",
		DSN:    "whatever",
	}, nil)
	assert.Error(t, err)
}
