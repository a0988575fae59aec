// Package neo4j implements graph.Repository on a Neo4j server.
package neo4j

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honghai9112k/tool-java2ts/internal/graph"
	"github.com/honghai9112k/tool-java2ts/internal/ir"
	"github.com/honghai9112k/tool-java2ts/internal/observability"
)

const (
	storeDeclaration = "MERGE (d:Declaration {project: $project, name: $name}) " +
		"SET d.kind = $kind, d.location = $location, d.super = $super, d.fields = $fields, " +
		"d.constants = $constants, d.external = false"
	storeExtends = "MATCH (d:Declaration {project: $project, name: $name}) " +
		"MERGE (t:Declaration {project: $project, name: $target}) " +
		"ON CREATE SET t.external = true " +
		"MERGE (d)-[:EXTENDS]->(t)"
	storeReference = "MATCH (d:Declaration {project: $project, name: $name}) " +
		"MERGE (t:Declaration {project: $project, name: $target}) " +
		"ON CREATE SET t.external = true " +
		"MERGE (d)-[:REFERENCES]->(t)"
	clearRelationships = "MATCH (d:Declaration {project: $project, name: $name})-[r:EXTENDS|REFERENCES]->() DELETE r"
	loadDeclarations   = "MATCH (d:Declaration {project: $project}) WHERE d.external = false " +
		"OPTIONAL MATCH (d)-[:EXTENDS|REFERENCES]->(t:Declaration) " +
		"RETURN d.name AS name, d.kind AS kind, d.location AS location, d.super AS super, " +
		"d.fields AS fields, d.constants AS constants, collect(DISTINCT t.name) AS deps ORDER BY name"
	queryDependents = "MATCH (d:Declaration {project: $project})-[:EXTENDS|REFERENCES]->(:Declaration {project: $project, name: $name}) " +
		"RETURN DISTINCT d.name AS name ORDER BY name"
)

// Neo4jRepository implements graph.Repository using Neo4j.
type Neo4jRepository struct {
	driver neo4j.DriverWithContext
}

// NewNeo4j creates a Neo4j-backed repository and verifies connectivity.
func NewNeo4j(ctx context.Context, uri, username, password string) (*Neo4jRepository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, errors.Wrap(err, "neo4j driver")
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, errors.Wrap(err, "neo4j connectivity")
	}
	return &Neo4jRepository{driver: driver}, nil
}

// Ping verifies connectivity. It matches the health checker signature.
func (r *Neo4jRepository) Ping(ctx context.Context) error {
	return r.driver.VerifyConnectivity(ctx)
}

func (r *Neo4jRepository) StoreDeclarations(ctx context.Context, project string, decls []*ir.Declaration) error {
	ctx, span := observability.StartGraphSpan(ctx, "store", len(decls))
	defer span.End()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, d := range decls {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			params := declarationParams(project, d)
			if _, err := tx.Run(ctx, storeDeclaration, params); err != nil {
				return nil, err
			}
			if _, err := tx.Run(ctx, clearRelationships, params); err != nil {
				return nil, err
			}
			for _, rel := range relationships(d) {
				query := storeReference
				if rel.extends {
					query = storeExtends
				}
				_, err := tx.Run(ctx, query, map[string]any{
					"project": project, "name": d.Name, "target": rel.target,
				})
				if err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if err != nil {
			err = errors.Wrapf(err, "store declaration %s", d.Name)
			observability.RecordError(span, err)
			return err
		}
	}
	return nil
}

func (r *Neo4jRepository) LoadDeclarations(ctx context.Context, project string) ([]*ir.Declaration, error) {
	ctx, span := observability.StartGraphSpan(ctx, "load", 0)
	defer span.End()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, loadDeclarations, map[string]any{"project": project})
		if err != nil {
			return nil, err
		}
		var decls []*ir.Declaration
		for records.Next(ctx) {
			decls = append(decls, declarationFromRecord(records.Record().AsMap()))
		}
		return decls, records.Err()
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, errors.Wrapf(err, "load project %s", project)
	}
	return result.([]*ir.Declaration), nil
}

func (r *Neo4jRepository) QueryDependents(ctx context.Context, project, name string) ([]string, error) {
	ctx, span := observability.StartGraphSpan(ctx, "dependents", 1)
	defer span.End()

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, queryDependents, map[string]any{"project": project, "name": name})
		if err != nil {
			return nil, err
		}
		var names []string
		for records.Next(ctx) {
			n, _ := records.Record().Get("name")
			if s, ok := n.(string); ok {
				names = append(names, s)
			}
		}
		return names, records.Err()
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, errors.Wrapf(err, "query dependents of %s", name)
	}
	return result.([]string), nil
}

func (r *Neo4jRepository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

type relationship struct {
	target  string
	extends bool
}

// relationships lists the outgoing edges of d: its supertype first, then
// every other dependency.
func relationships(d *ir.Declaration) []relationship {
	var rels []relationship
	if d.Super != "" {
		rels = append(rels, relationship{target: d.Super, extends: true})
	}
	for _, dep := range d.Dependencies {
		if dep == d.Super || dep == d.Name {
			continue
		}
		rels = append(rels, relationship{target: dep})
	}
	return rels
}

// declarationParams flattens d into query parameters. Fields are stored as
// "name:type" strings and constants as "NAME=value". Type names never contain
// a colon, quoted field names may.
func declarationParams(project string, d *ir.Declaration) map[string]any {
	fields := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		fields = append(fields, f.Name+":"+f.Type)
	}
	constants := make([]string, 0, len(d.Constants))
	for _, c := range d.Constants {
		constants = append(constants, c.Name+"="+c.Value)
	}
	return map[string]any{
		"project":   project,
		"name":      d.Name,
		"kind":      string(d.Kind),
		"location":  d.Location,
		"super":     d.Super,
		"fields":    fields,
		"constants": constants,
	}
}

// declarationFromRecord is the inverse of declarationParams plus the
// collected dependency names.
func declarationFromRecord(rec map[string]any) *ir.Declaration {
	d := &ir.Declaration{
		Name:     stringValue(rec["name"]),
		Kind:     ir.Kind(stringValue(rec["kind"])),
		Location: stringValue(rec["location"]),
		Super:    stringValue(rec["super"]),
	}
	for _, s := range stringList(rec["fields"]) {
		i := strings.LastIndex(s, ":")
		if i < 0 {
			continue
		}
		name, typ := s[:i], s[i+1:]
		d.Fields = append(d.Fields, &ir.Field{Name: name, OriginalName: name, Type: typ, Optional: true})
	}
	for _, s := range stringList(rec["constants"]) {
		name, value, _ := strings.Cut(s, "=")
		d.Constants = append(d.Constants, &ir.Constant{Name: name, Value: value})
	}
	d.Dependencies = stringList(rec["deps"])
	return d
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func stringList(v any) []string {
	items, _ := v.([]any)
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

var _ graph.Repository = (*Neo4jRepository)(nil)
