package db

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltProvider_BatchAndIterate(t *testing.T) {
	dir := t.TempDir()
	p, err := NewBoltProvider(dir)
	require.NoError(t, err)
	defer p.Close()

	tm := NewDBTxManager(p)
	err = tm.WithBatch(func(batch DatabaseBatch) error {
		batch.Put([]byte("stake:b"), []byte("2"))
		batch.Put([]byte("stake:a"), []byte("1"))
		batch.Put([]byte("pool:x"), []byte("p"))
		return nil
	})
	require.NoError(t, err)

	var keys []string
	require.NoError(t, p.IteratePrefix([]byte("stake:"), func(key, value []byte) bool {
		keys = append(keys, string(key))
		return true
	}))
	assert.Equal(t, []string{"stake:a", "stake:b"}, keys)

	got, err := p.GetBatch([][]byte{[]byte("stake:a"), []byte("missing")})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"stake:a": []byte("1")}, got)

	require.NoError(t, tm.WithBatch(func(batch DatabaseBatch) error {
		batch.Delete([]byte("stake:a"))
		return nil
	}))
	v, err := p.Get([]byte("stake:a"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestBoltProvider_Reopen(t *testing.T) {
	dir := t.TempDir()
	p, err := NewBoltProvider(dir)
	require.NoError(t, err)
	require.NoError(t, p.Put([]byte("k"), []byte("v")))
	require.NoError(t, p.Close())
	// a second close is a no-op
	require.NoError(t, p.Close())

	p, err = NewBoltProvider(dir)
	require.NoError(t, err)
	defer p.Close()

	has, err := p.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, has)
}

// Runs only against a live server, e.g.
// STAKELEDGER_TEST_POSTGRES_DSN="postgres://localhost/stakeledger?sslmode=disable"
func TestPostgresProvider_Live(t *testing.T) {
	dsn := os.Getenv("STAKELEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STAKELEDGER_TEST_POSTGRES_DSN not set")
	}

	p, err := NewPostgresProvider(dsn, "stakeledger_kv_test")
	require.NoError(t, err)
	defer p.Close()
	_, err = p.db.Exec(`TRUNCATE stakeledger_kv_test`)
	require.NoError(t, err)

	tm := NewDBTxManager(p)
	require.NoError(t, tm.WithBatch(func(batch DatabaseBatch) error {
		batch.Put([]byte("stake:1"), []byte("x"))
		batch.Put([]byte("stake:2"), []byte("y"))
		batch.Put([]byte("pool:1"), []byte("z"))
		return nil
	}))

	var keys []string
	require.NoError(t, p.IteratePrefix([]byte("stake:"), func(key, value []byte) bool {
		keys = append(keys, string(key))
		return true
	}))
	assert.Equal(t, []string{"stake:1", "stake:2"}, keys)

	got, err := p.GetBatch([][]byte{[]byte("pool:1"), []byte("nope")})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"pool:1": []byte("z")}, got)
}

func TestNewPostgresProvider_RejectsTableName(t *testing.T) {
	_, err := NewPostgresProvider("postgres://unused", "kv; DROP TABLE x")
	assert.Error(t, err)
}
