package db

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/lib/pq"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/mezonai/stakeledger/logx"
)

const defaultPostgresTable = "stakeledger_kv"

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresProvider implements IterableProvider on a two-column key/value
// table. Batches commit as one SQL transaction.
type PostgresProvider struct {
	db    *sql.DB
	table string

	selectSQL string
	selectAny string
	existsSQL string
	upsertSQL string
	deleteSQL string
	rangeSQL  string
	fromSQL   string
}

// NewPostgresProvider connects to dsn and creates table if it is missing.
// An empty table name uses stakeledger_kv.
func NewPostgresProvider(dsn, table string) (*PostgresProvider, error) {
	if table == "" {
		table = defaultPostgresTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", describePQ(err))
	}

	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key   BYTEA PRIMARY KEY,
		value BYTEA NOT NULL
	)`, table)
	if _, err := db.Exec(createSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create %s table: %w", table, describePQ(err))
	}

	logx.Info("POSTGRES", "Connected, using table ", table)
	return newPostgresProvider(db, table), nil
}

func newPostgresProvider(db *sql.DB, table string) *PostgresProvider {
	return &PostgresProvider{
		db:        db,
		table:     table,
		selectSQL: fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, table),
		selectAny: fmt.Sprintf(`SELECT key, value FROM %s WHERE key = ANY($1)`, table),
		existsSQL: fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE key = $1)`, table),
		upsertSQL: fmt.Sprintf(`INSERT INTO %s (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, table),
		deleteSQL: fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, table),
		rangeSQL:  fmt.Sprintf(`SELECT key, value FROM %s WHERE key >= $1 AND key < $2 ORDER BY key`, table),
		fromSQL:   fmt.Sprintf(`SELECT key, value FROM %s WHERE key >= $1 ORDER BY key`, table),
	}
}

// describePQ adds the SQLSTATE name to server errors
func describePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s (%s): %w", pqErr.Code.Name(), pqErr.Code, err)
	}
	return err
}

// Get retrieves a value by key
func (p *PostgresProvider) Get(key []byte) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(p.selectSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, describePQ(err)
	}
	return value, nil
}

// GetBatch retrieves multiple values with a single ANY query
func (p *PostgresProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	rows, err := p.db.Query(p.selectAny, pq.ByteaArray(keys))
	if err != nil {
		return nil, describePQ(err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[string(key)] = value
	}
	return result, rows.Err()
}

// Put stores a key-value pair
func (p *PostgresProvider) Put(key, value []byte) error {
	_, err := p.db.Exec(p.upsertSQL, key, value)
	return describePQ(err)
}

// Delete removes a key-value pair
func (p *PostgresProvider) Delete(key []byte) error {
	_, err := p.db.Exec(p.deleteSQL, key)
	return describePQ(err)
}

// Has checks if a key exists
func (p *PostgresProvider) Has(key []byte) (bool, error) {
	var exists bool
	if err := p.db.QueryRow(p.existsSQL, key).Scan(&exists); err != nil {
		return false, describePQ(err)
	}
	return exists, nil
}

// Close closes the connection pool
func (p *PostgresProvider) Close() error {
	return p.db.Close()
}

// Batch returns a batch applied inside one SQL transaction
func (p *PostgresProvider) Batch() DatabaseBatch {
	return &PostgresBatch{provider: p}
}

// IteratePrefix scans the key range covered by prefix in key order
func (p *PostgresProvider) IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error {
	r := util.BytesPrefix(prefix)

	var (
		rows *sql.Rows
		err  error
	)
	if r.Limit == nil {
		rows, err = p.db.Query(p.fromSQL, r.Start)
	} else {
		rows, err = p.db.Query(p.rangeSQL, r.Start, r.Limit)
	}
	if err != nil {
		return describePQ(err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if !callback(key, value) {
			break
		}
	}
	return rows.Err()
}

type sqlOp struct {
	key    []byte
	value  []byte
	delete bool
}

// PostgresBatch buffers operations until Write
type PostgresBatch struct {
	provider *PostgresProvider
	ops      []sqlOp
}

// Put adds a key-value pair to the batch
func (b *PostgresBatch) Put(key, value []byte) {
	b.ops = append(b.ops, sqlOp{key: key, value: value})
}

// Delete adds a deletion to the batch
func (b *PostgresBatch) Delete(key []byte) {
	b.ops = append(b.ops, sqlOp{key: key, delete: true})
}

func (b *PostgresBatch) Len() int {
	return len(b.ops)
}

// Write runs every operation in one transaction
func (b *PostgresBatch) Write() error {
	tx, err := b.provider.db.Begin()
	if err != nil {
		return describePQ(err)
	}

	for _, op := range b.ops {
		if op.delete {
			_, err = tx.Exec(b.provider.deleteSQL, op.key)
		} else {
			_, err = tx.Exec(b.provider.upsertSQL, op.key, op.value)
		}
		if err != nil {
			_ = tx.Rollback()
			return describePQ(err)
		}
	}

	return describePQ(tx.Commit())
}

// Reset clears the batch
func (b *PostgresBatch) Reset() {
	b.ops = b.ops[:0]
}

// Close releases batch resources
func (b *PostgresBatch) Close() error {
	b.ops = nil
	return nil
}
