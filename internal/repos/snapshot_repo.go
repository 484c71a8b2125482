package repos

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"storefront/internal/cart"
)

// SnapshotRepo stores cart snapshots in sqlite. Snapshots older than TTL
// read as absent and are removed by Sweep.
type SnapshotRepo struct {
	db  *sqlx.DB
	TTL time.Duration
	Now func() time.Time
}

func NewSnapshotRepo(db *sqlx.DB, ttl time.Duration) *SnapshotRepo {
	return &SnapshotRepo{db: db, TTL: ttl, Now: time.Now}
}

func (r *SnapshotRepo) Namespace(name string) cart.Storage {
	return snapshotNamespace{repo: r, name: name}
}

func (r *SnapshotRepo) load(ns, key string) ([]byte, error) {
	var value []byte
	var cutoff int64
	if r.TTL > 0 {
		cutoff = r.Now().Add(-r.TTL).Unix()
	}
	err := r.db.Get(&value, `
	  SELECT value FROM cart_snapshots
	  WHERE namespace = ? AND key = ? AND updated_at >= ?
	`, ns, key, cutoff)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cart.ErrNoSnapshot
	}
	return value, err
}

func (r *SnapshotRepo) save(ns, key string, value []byte) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_snapshots(namespace, key, value, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`, ns, key, value, r.Now().Unix())
	return err
}

// Sweep deletes snapshots last written before cutoff.
func (r *SnapshotRepo) Sweep(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM cart_snapshots WHERE updated_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count reports how many snapshots a browser namespace holds.
func (r *SnapshotRepo) Count(ns string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM cart_snapshots WHERE namespace = ?`, ns)
	return n, err
}

type snapshotNamespace struct {
	repo *SnapshotRepo
	name string
}

func (s snapshotNamespace) Load(key string) ([]byte, error)   { return s.repo.load(s.name, key) }
func (s snapshotNamespace) Save(key string, data []byte) error { return s.repo.save(s.name, key, data) }
