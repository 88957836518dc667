package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/c360studio/semxref/terms"
)

// CypherRunner executes one write query.
type CypherRunner interface {
	Run(ctx context.Context, query string, params map[string]any) error
}

// Neo4jOptions configures a Neo4jSink.
type Neo4jOptions struct {
	BatchSize int
	// Predicates maps predicate CURIEs to relationship types. Unlisted
	// predicates become RELATES edges carrying the CURIE.
	Predicates map[string]string
	// Properties maps literal predicate CURIEs to single-valued node
	// properties.
	Properties map[string]string
	// Lists maps literal predicate CURIEs to list properties. Literal
	// predicates in neither map are appended to "literals" as "curie=value".
	Lists  map[string]string
	Logger *slog.Logger
}

// DefaultNeo4jOptions returns relationship and property mappings for the
// predicates in dict.
func DefaultNeo4jOptions(dict *terms.Dictionary) Neo4jOptions {
	if dict == nil {
		dict = terms.Default()
	}
	return Neo4jOptions{
		Predicates: map[string]string{
			dict.ID(terms.SubClassOf):      "SUBCLASS_OF",
			dict.ID(terms.EquivalentClass): "EQUIVALENT_TO",
			dict.ID(terms.Type):            "TYPE",
			dict.ID(terms.IsAbout):         "IS_ABOUT",
		},
		Properties: map[string]string{
			dict.ID(terms.Label):      "label",
			dict.ID(terms.Definition): "definition",
		},
		Lists: map[string]string{
			dict.ID(terms.HasExactSynonym): "synonyms",
		},
	}
}

// Neo4jSink merges triples into Neo4j: every subject and object becomes an
// :Entity node keyed by id, and literals become node properties.
type Neo4jSink struct {
	runner     CypherRunner
	predicates map[string]string
	properties map[string]string
	lists      map[string]string
	logger     *slog.Logger
	batch      *Batcher
	closer     func(ctx context.Context) error
}

// NewNeo4jSink creates a sink over runner.
func NewNeo4jSink(runner CypherRunner, opts Neo4jOptions) *Neo4jSink {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Neo4jSink{
		runner:     runner,
		predicates: opts.Predicates,
		properties: opts.Properties,
		lists:      opts.Lists,
		logger:     logger,
	}
	s.batch = NewBatcher(opts.BatchSize, s.flush)
	return s
}

// DialNeo4j connects to Neo4j and returns a sink that owns the driver.
func DialNeo4j(ctx context.Context, uri, user, password string, opts Neo4jOptions) (*Neo4jSink, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j at %s: %w", uri, err)
	}

	s := NewNeo4jSink(&driverRunner{driver: driver}, opts)
	s.closer = driver.Close
	if err := s.runner.Run(ctx, "CREATE CONSTRAINT entity_id IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE", nil); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("create entity constraint: %w", err)
	}
	return s, nil
}

func (s *Neo4jSink) Write(ctx context.Context, triples ...Triple) error {
	return s.batch.Add(ctx, triples...)
}

func (s *Neo4jSink) Close(ctx context.Context) error {
	err := s.batch.Flush(ctx)
	if s.closer != nil {
		if cerr := s.closer(ctx); err == nil {
			err = cerr
		}
		s.closer = nil
	}
	return err
}

func (s *Neo4jSink) relType(predicate string) string {
	if t, ok := s.predicates[predicate]; ok {
		return t
	}
	return "RELATES"
}

func (s *Neo4jSink) flush(ctx context.Context, batch []Triple) error {
	edges := make(map[string][]map[string]any)
	props := make(map[string][]map[string]any)
	lists := make(map[string][]map[string]any)

	for _, t := range batch {
		if !t.Literal {
			rel := s.relType(t.Predicate)
			edges[rel] = append(edges[rel], map[string]any{"s": t.Subject, "p": t.Predicate, "o": t.Object})
			continue
		}
		if p, ok := s.properties[t.Predicate]; ok {
			props[p] = append(props[p], map[string]any{"s": t.Subject, "v": t.Object})
		} else if l, ok := s.lists[t.Predicate]; ok {
			lists[l] = append(lists[l], map[string]any{"s": t.Subject, "v": t.Object})
		} else {
			lists["literals"] = append(lists["literals"], map[string]any{"s": t.Subject, "v": t.Predicate + "=" + t.Object})
		}
	}

	for _, rel := range sortedKeys(edges) {
		query := fmt.Sprintf(`UNWIND $rows AS row
MERGE (s:Entity {id: row.s})
MERGE (o:Entity {id: row.o})
MERGE (s)-[:%s {predicate: row.p}]->(o)`, rel)
		if err := s.runner.Run(ctx, query, map[string]any{"rows": edges[rel]}); err != nil {
			return fmt.Errorf("merge %s edges: %w", rel, err)
		}
	}
	for _, prop := range sortedKeys(props) {
		query := fmt.Sprintf(`UNWIND $rows AS row
MERGE (s:Entity {id: row.s})
SET s.%s = row.v`, prop)
		if err := s.runner.Run(ctx, query, map[string]any{"rows": props[prop]}); err != nil {
			return fmt.Errorf("set %s: %w", prop, err)
		}
	}
	for _, list := range sortedKeys(lists) {
		query := fmt.Sprintf(`UNWIND $rows AS row
MERGE (s:Entity {id: row.s})
SET s.%[1]s = CASE WHEN row.v IN coalesce(s.%[1]s, []) THEN s.%[1]s ELSE coalesce(s.%[1]s, []) + row.v END`, list)
		if err := s.runner.Run(ctx, query, map[string]any{"rows": lists[list]}); err != nil {
			return fmt.Errorf("append %s: %w", list, err)
		}
	}

	s.logger.Debug("Merged triples into neo4j", "triples", len(batch))
	return nil
}

func sortedKeys(m map[string][]map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type driverRunner struct {
	driver neo4j.DriverWithContext
}

func (r *driverRunner) Run(ctx context.Context, query string, params map[string]any) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}
