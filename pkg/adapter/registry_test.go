package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/querykit/pkg/dialect"
)

type fakeAdapter struct {
	BaseSQLAdapter
}

func (f *fakeAdapter) Connect(ctx context.Context, cfg Config) error {
	f.Cfg = cfg
	return nil
}

func (f *fakeAdapter) Dialect() *dialect.Dialect { return dialect.Default() }

func (f *fakeAdapter) TableNames(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	Register("fake", func(logger *slog.Logger) Adapter {
		return &fakeAdapter{BaseSQLAdapter: BaseSQLAdapter{Logger: logger}}
	})

	assert.True(t, IsRegistered("fake"))
	assert.Contains(t, List(), "fake")

	a, err := NewAdapter(Config{Type: "fake"}, nil)
	require.NoError(t, err)
	require.IsType(t, &fakeAdapter{}, a)
	assert.Nil(t, a.DB(), "no connection before Connect")
}

func TestNewAdapterUnknownType(t *testing.T) {
	Register("fake", func(logger *slog.Logger) Adapter { return &fakeAdapter{} })

	_, err := NewAdapter(Config{Type: "oracle"}, nil)
	var uerr *UnknownAdapterError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "oracle", uerr.Type)
	assert.Contains(t, uerr.Available, "fake")
	assert.Contains(t, err.Error(), "querykit.yaml")
}

func TestNewAdapterRequiresType(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not specified")
}

func TestBaseCloseWithoutConnection(t *testing.T) {
	var b BaseSQLAdapter
	assert.NoError(t, b.Close())
	assert.False(t, b.IsConnected())
}

func TestQueryStringsRequiresConnection(t *testing.T) {
	var b BaseSQLAdapter
	_, err := b.QueryStrings(context.Background(), "SELECT name FROM tables")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not established")
}
