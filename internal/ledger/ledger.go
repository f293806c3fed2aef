package ledger

// Ledger defines the patch history operations.
// Consumers depend on this interface rather than *DB so tests can swap in
// an in-memory fake.
type Ledger interface {
	Record(e Entry) (int64, error)
	Recent(path string, limit int) ([]Entry, error)
	LastChecksum(path string) (string, error)
	Close() error
}

var _ Ledger = (*DB)(nil)
