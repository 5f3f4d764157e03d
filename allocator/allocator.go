// Package allocator mints unique, collision-free integer identifiers from
// namespace-partitioned monotonic counters persisted in the graph database.
package allocator

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/logger"
)

// Namespaces used by the graph store. NamespaceNode issues primary keys for
// every stored node; NamespaceSchemaNode issues the schema_id values carried
// by Class and Property nodes. Callers may reserve from their own namespaces
// as well; a counter row is created on first use.
const (
	NamespaceNode       = "node"
	NamespaceSchemaNode = "schema_node"
)

// reserveQuery advances a namespace counter and returns its new next_value
// in one statement. The read-advance-write happens inside a single SQLite
// statement, so two concurrent reservations can never observe the same
// value. A fresh namespace starts issuing at 1.
const reserveQuery = `
	INSERT INTO counters (namespace, next_value) VALUES (?, 1 + ?)
	ON CONFLICT(namespace) DO UPDATE SET next_value = next_value + excluded.next_value - 1
	RETURNING next_value`

// Allocator reserves blocks of consecutive identifiers per namespace.
type Allocator struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// New creates an Allocator over the given database. The counters table must
// already exist (db.Migrate creates it). logger may be nil.
func New(database *sql.DB, logger *zap.SugaredLogger) *Allocator {
	return &Allocator{db: database, logger: logger}
}

// Reserve permanently reserves count consecutive integers in the given
// namespace and returns the first of them. Subsequent calls never return an
// already-issued value, even under concurrent callers. On error no value was
// granted; callers must not assume a partial reservation.
func (a *Allocator) Reserve(namespace string, count int64) (int64, error) {
	if namespace == "" {
		return 0, errors.New("allocator: namespace must not be empty")
	}
	if count < 1 {
		return 0, errors.Newf("allocator: count must be >= 1, got %d", count)
	}

	var next int64
	if err := a.db.QueryRow(reserveQuery, namespace, count).Scan(&next); err != nil {
		return 0, errors.Wrapf(err, "allocator: reserve %d in namespace %q", count, namespace)
	}

	first := next - count
	if a.logger != nil {
		a.logger.Debugw("Reserved identifiers",
			logger.FieldNamespace, namespace,
			"first", first,
			logger.FieldCount, count,
		)
	}
	return first, nil
}

// Next reserves and returns a single identifier in the namespace.
func (a *Allocator) Next(namespace string) (int64, error) {
	return a.Reserve(namespace, 1)
}
