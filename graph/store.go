// Package graph provides the SQLite-backed property graph store. It handles
// node/edge persistence, JSON serialization, and the read queries the schema
// layer builds on.
package graph

import (
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/trellisdb/trellis/allocator"
	"github.com/trellisdb/trellis/errors"
	"github.com/trellisdb/trellis/logger"
)

// Query constants
const (
	nodeInsertQuery = `
		INSERT INTO nodes (id, labels, properties, created_at)
		VALUES (?, ?, ?, ?)`

	edgeInsertQuery = `
		INSERT INTO edges (source, target, name, properties)
		VALUES (?, ?, ?, ?)`

	nodeSelectQuery = `
		SELECT id, labels, properties, created_at FROM nodes WHERE id = ?`

	nodeExistsQuery = `
		SELECT EXISTS(SELECT 1 FROM nodes WHERE id = ?)`

	outgoingEdgesQuery = `
		SELECT id, source, target, name, properties
		FROM edges WHERE source = ? AND name = ?`

	incomingEdgesQuery = `
		SELECT id, source, target, name, properties
		FROM edges WHERE target = ? AND name = ?`

	nodesByLabelCountQuery = `
		SELECT COUNT(*) FROM nodes
		WHERE EXISTS (
			SELECT 1 FROM json_each(nodes.labels)
			WHERE value = ?
		)`
)

// Store implements node and edge persistence over a SQLite database.
// Node identifiers are minted through the Allocator, never by the database,
// so concurrent writers sharing one counters table never collide.
type Store struct {
	db     *sql.DB
	alloc  *allocator.Allocator
	logger *zap.SugaredLogger
}

// NewStore creates a graph store over the given database. logger may be nil.
func NewStore(database *sql.DB, logger *zap.SugaredLogger) *Store {
	return &Store{
		db:     database,
		alloc:  allocator.New(database, logger),
		logger: logger,
	}
}

// DB exposes the underlying database for read queries built by other layers.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Allocator exposes the identifier allocator.
func (s *Store) Allocator() *allocator.Allocator {
	return s.alloc
}

// CreateNode stores a new node with the given labels and properties and
// returns its allocator-minted identifier.
func (s *Store) CreateNode(labels []string, properties map[string]any) (int64, error) {
	id, err := s.alloc.Next(allocator.NamespaceNode)
	if err != nil {
		return 0, err
	}

	labelsJSON, propsJSON, err := marshalNodeFields(labels, properties)
	if err != nil {
		return 0, err
	}

	if _, err := s.db.Exec(nodeInsertQuery, id, labelsJSON, propsJSON, time.Now().UTC()); err != nil {
		return 0, errors.Wrapf(err, "failed to insert node %d", id)
	}

	if s.logger != nil {
		s.logger.Debugw("Created node",
			logger.FieldNodeID, id,
			logger.FieldLabels, labels,
		)
	}
	return id, nil
}

// CreateEdge stores a directed edge between two existing nodes. This is the
// raw primitive; schema-validated data linking lives in the schema package.
func (s *Store) CreateEdge(source, target int64, name string, properties map[string]any) error {
	if name == "" {
		return errors.New("edge name must not be empty")
	}

	propsJSON, err := json.Marshal(orEmptyMap(properties))
	if err != nil {
		return errors.Wrap(err, "failed to marshal edge properties")
	}

	if _, err := s.db.Exec(edgeInsertQuery, source, target, name, string(propsJSON)); err != nil {
		return errors.Wrapf(err, "failed to insert edge %d -[%s]-> %d", source, name, target)
	}

	if s.logger != nil {
		s.logger.Debugw("Created edge",
			logger.FieldEdge, name,
			"source", source,
			"target", target,
		)
	}
	return nil
}

// GetNode loads a node by id. Returns sql.ErrNoRows (wrapped) if absent.
func (s *Store) GetNode(id int64) (*Node, error) {
	var (
		labelsJSON string
		propsJSON  string
		createdAt  time.Time
		node       Node
	)
	err := s.db.QueryRow(nodeSelectQuery, id).Scan(&node.ID, &labelsJSON, &propsJSON, &createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load node %d", id)
	}
	node.CreatedAt = createdAt

	if err := json.Unmarshal([]byte(labelsJSON), &node.Labels); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal labels of node %d", id)
	}
	if err := json.Unmarshal([]byte(propsJSON), &node.Properties); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal properties of node %d", id)
	}
	return &node, nil
}

// NodeExists checks whether a node with the given id exists.
func (s *Store) NodeExists(id int64) bool {
	var exists bool
	err := s.db.QueryRow(nodeExistsQuery, id).Scan(&exists)
	return err == nil && exists
}

// OutgoingEdges returns all edges of the given name leaving the node.
func (s *Store) OutgoingEdges(source int64, name string) ([]Edge, error) {
	return s.queryEdges(outgoingEdgesQuery, source, name)
}

// IncomingEdges returns all edges of the given name arriving at the node.
func (s *Store) IncomingEdges(target int64, name string) ([]Edge, error) {
	return s.queryEdges(incomingEdgesQuery, target, name)
}

func (s *Store) queryEdges(query string, nodeID int64, name string) ([]Edge, error) {
	rows, err := s.db.Query(query, nodeID, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %q edges of node %d", name, nodeID)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var (
			edge      Edge
			propsJSON string
		)
		if err := rows.Scan(&edge.ID, &edge.Source, &edge.Target, &edge.Name, &propsJSON); err != nil {
			return nil, errors.Wrap(err, "failed to scan edge row")
		}
		if err := json.Unmarshal([]byte(propsJSON), &edge.Properties); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal properties of edge %d", edge.ID)
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

// QueryScalarInt runs a read query expected to return a single integer.
func (s *Store) QueryScalarInt(query string, args ...any) (int64, error) {
	var v int64
	if err := s.db.QueryRow(query, args...).Scan(&v); err != nil {
		return 0, errors.Wrap(err, "scalar query failed")
	}
	return v, nil
}

// CountNodesByLabel counts nodes carrying the given label.
func (s *Store) CountNodesByLabel(label string) (int64, error) {
	return s.QueryScalarInt(nodesByLabelCountQuery, label)
}

// GetStats summarizes the stored graph.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	total, err := s.QueryScalarInt("SELECT COUNT(*) FROM nodes")
	if err != nil {
		return nil, err
	}
	stats.TotalNodes = int(total)

	edges, err := s.QueryScalarInt("SELECT COUNT(*) FROM edges")
	if err != nil {
		return nil, err
	}
	stats.TotalEdges = int(edges)

	classes, err := s.CountNodesByLabel(LabelClass)
	if err != nil {
		return nil, err
	}
	stats.ClassNodes = int(classes)

	props, err := s.CountNodesByLabel(LabelProperty)
	if err != nil {
		return nil, err
	}
	stats.PropNodes = int(props)

	stats.DataRecords = stats.TotalNodes - stats.ClassNodes - stats.PropNodes
	return stats, nil
}

// marshalNodeFields marshals labels and properties to their JSON column forms.
func marshalNodeFields(labels []string, properties map[string]any) (string, string, error) {
	if labels == nil {
		labels = []string{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal labels")
	}

	propsJSON, err := json.Marshal(orEmptyMap(properties))
	if err != nil {
		return "", "", errors.Wrap(err, "failed to marshal properties")
	}

	return string(labelsJSON), string(propsJSON), nil
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
