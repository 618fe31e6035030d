package tables

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comanda-pos/backend/pkg/config"
	"github.com/comanda-pos/backend/pkg/db"
	"github.com/comanda-pos/backend/pkg/enums"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
)

func newTableFixture(t *testing.T, dsn string) Service {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver:        config.DriverSQLite,
		DSN:           dsn,
		TxMaxWait:     time.Second,
		TxMaxDuration: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().Exec(`CREATE TABLE dining_tables (
		id TEXT PRIMARY KEY,
		number INTEGER NOT NULL UNIQUE,
		capacity INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	)`).Error)

	repo, err := NewRepository(client.DB())
	require.NoError(t, err)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestOccupyConflictsWhenTaken(t *testing.T) {
	svc := newTableFixture(t, "file:tables_occupy?mode=memory&cache=shared")
	ctx := context.Background()

	table, err := svc.Create(ctx, 4, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Occupy(ctx, nil, table.ID))

	err = svc.Occupy(ctx, nil, table.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	got, err := svc.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusOccupied, got.Status)
}

func TestReleaseFreesTableAndToleratesMissing(t *testing.T) {
	svc := newTableFixture(t, "file:tables_release?mode=memory&cache=shared")
	ctx := context.Background()

	table, err := svc.Create(ctx, 7, 4)
	require.NoError(t, err)
	require.NoError(t, svc.Occupy(ctx, nil, table.ID))

	require.NoError(t, svc.Release(ctx, nil, table.ID))
	got, err := svc.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusAvailable, got.Status)

	// A table that was deleted mid-flight does not fail the release.
	require.NoError(t, svc.Delete(ctx, table.ID))
	require.NoError(t, svc.Release(ctx, nil, table.ID))
}

func TestDeleteOccupiedTableRejected(t *testing.T) {
	svc := newTableFixture(t, "file:tables_delete?mode=memory&cache=shared")
	ctx := context.Background()

	table, err := svc.Create(ctx, 9, 6)
	require.NoError(t, err)
	require.NoError(t, svc.Occupy(ctx, nil, table.ID))

	err = svc.Delete(ctx, table.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}
