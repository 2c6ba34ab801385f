// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hybrid Graph Chat Contributors

// Package graph provides the graph-store boundary: neighborhood
// traversal of entity nodes, used to enrich vector matches with related
// facts.
package graph

import (
	"context"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	apperr "github.com/1109inc/hybrid-graph-chat-assistant/pkg/errors"
)

// descLimit caps the description carried into prompts.
const descLimit = 400

// Fact is one neighboring relation of an entity.
type Fact struct {
	Source     string
	Rel        string
	TargetID   string
	TargetName string
	TargetDesc string
	Labels     []string
}

// Traverser fetches neighboring facts for entity ids.
type Traverser interface {
	NeighborFacts(ctx context.Context, ids []string) ([]Fact, error)
	Close(ctx context.Context) error
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
}

// Compile-time interface check.
var _ Traverser = (*Neo4jTraverser)(nil)

// Neo4jTraverser implements Traverser against a Neo4j instance.
type Neo4jTraverser struct {
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

// NewNeo4jTraverser connects to Neo4j with basic auth.
func NewNeo4jTraverser(cfg Neo4jConfig) (*Neo4jTraverser, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeGraphConnectFailure, "neo4j: creating driver for %s", cfg.URI)
	}
	return &Neo4jTraverser{driver: driver, logger: slog.Default()}, nil
}

// NeighborFacts returns up to ten neighboring relations per entity id,
// in id order.
func (t *Neo4jTraverser) NeighborFacts(ctx context.Context, ids []string) ([]Fact, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	session := t.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer func() { _ = session.Close(ctx) }()

	const q = `MATCH (n:Entity {id:$nid})-[r]-(m:Entity)
RETURN type(r) AS rel, labels(m) AS labels, m.id AS id,
	m.name AS name, m.type AS type, m.description AS description
LIMIT 10`

	var facts []Fact
	for _, nid := range ids {
		result, err := session.Run(ctx, q, map[string]any{"nid": nid})
		if err != nil {
			return nil, apperr.Wrapf(err, apperr.CodeGraphQueryFailure, "neo4j: querying neighbors of %s", nid)
		}

		for result.Next(ctx) {
			facts = append(facts, factFromRecord(nid, result.Record()))
		}
		if err := result.Err(); err != nil {
			return nil, apperr.Wrapf(err, apperr.CodeGraphQueryFailure, "neo4j: iterating neighbors of %s", nid)
		}
	}

	return facts, nil
}

// Close shuts down the underlying driver.
func (t *Neo4jTraverser) Close(ctx context.Context) error {
	return t.driver.Close(ctx)
}

func factFromRecord(source string, rec *neo4j.Record) Fact {
	desc := truncate(stringValue(rec, "description"), descLimit)
	id := stringValue(rec, "id")

	return Fact{
		Source:     source,
		Rel:        stringValue(rec, "rel"),
		TargetID:   id,
		TargetName: displayName(stringValue(rec, "name"), desc, id),
		TargetDesc: desc,
		Labels:     stringsValue(rec, "labels"),
	}
}

// displayName returns a name usable in a prompt. When the stored name is
// missing or too short to mean anything, it falls back to the first ten
// words of the description tagged with the node id.
func displayName(name, desc, id string) string {
	if len(strings.TrimSpace(name)) >= 3 {
		return name
	}

	words := strings.Fields(desc)
	if len(words) > 10 {
		words = words[:10]
	}
	return "'" + strings.Join(words, " ") + "' (ID:" + id + ")"
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func stringsValue(rec *neo4j.Record, key string) []string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
