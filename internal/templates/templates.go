// Package templates generates starter diagrams for new projects.
package templates

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/routing"
	appErr "github.com/erd-studio/engine/pkg/errors"
)

// Name identifies a starter diagram.
type Name string

const (
	Blank Name = "blank"
	SaaS  Name = "saas"
)

// Names lists the available templates.
func Names() []Name { return []Name{Blank, SaaS} }

type column struct {
	key  string
	name string
	typ  diagram.ColumnType
	pk   bool
	fk   bool
}

type table struct {
	key     string
	x, y    float64
	columns []column
}

type relation struct {
	from, fromCol string
	to, toCol     string
}

type blueprint struct {
	tables    []table
	relations []relation
}

func pk(name string) column { return column{key: name, name: name, typ: diagram.ColumnUUID, pk: true} }

func fk(name string) column { return column{key: name, name: name, typ: diagram.ColumnUUID, fk: true} }

func col(name string, typ diagram.ColumnType) column {
	return column{key: name, name: name, typ: typ}
}

var blueprints = map[Name]blueprint{
	Blank: {},
	SaaS: {
		tables: []table{
			{key: "users", x: 100, y: 100, columns: []column{
				pk("id"), col("email", diagram.ColumnVarchar), col("password_hash", diagram.ColumnVarchar),
				col("full_name", diagram.ColumnVarchar), fk("role_id"), col("created_at", diagram.ColumnTimestamp),
			}},
			{key: "roles", x: 500, y: 100, columns: []column{
				pk("id"), col("name", diagram.ColumnVarchar), col("description", diagram.ColumnText),
			}},
			{key: "workspaces", x: 100, y: 500, columns: []column{
				pk("id"), col("name", diagram.ColumnVarchar), col("slug", diagram.ColumnVarchar),
				fk("owner_id"), col("created_at", diagram.ColumnTimestamp),
			}},
			{key: "companies", x: 500, y: 500, columns: []column{
				pk("id"), col("name", diagram.ColumnVarchar), col("address", diagram.ColumnText),
				col("tax_id", diagram.ColumnVarchar), fk("workspace_id"),
			}},
			{key: "departments", x: 900, y: 500, columns: []column{
				pk("id"), col("name", diagram.ColumnVarchar), fk("company_id"),
			}},
			{key: "subscriptions", x: 100, y: 900, columns: []column{
				pk("id"), fk("workspace_id"), col("plan", diagram.ColumnVarchar), col("status", diagram.ColumnVarchar),
				col("start_date", diagram.ColumnTimestamp), col("end_date", diagram.ColumnTimestamp),
			}},
			{key: "payments", x: 500, y: 900, columns: []column{
				pk("id"), fk("subscription_id"), col("amount", diagram.ColumnInt), col("currency", diagram.ColumnVarchar),
				col("status", diagram.ColumnVarchar), col("date", diagram.ColumnTimestamp),
			}},
		},
		relations: []relation{
			{from: "roles", fromCol: "id", to: "users", toCol: "role_id"},
			{from: "users", fromCol: "id", to: "workspaces", toCol: "owner_id"},
			{from: "workspaces", fromCol: "id", to: "companies", toCol: "workspace_id"},
			{from: "companies", fromCol: "id", to: "departments", toCol: "company_id"},
			{from: "workspaces", fromCol: "id", to: "subscriptions", toCol: "workspace_id"},
			{from: "subscriptions", fromCol: "id", to: "payments", toCol: "subscription_id"},
		},
	},
}

// Generator builds template diagrams with fresh ids.
type Generator struct {
	NewID func() string
}

// New returns a Generator issuing random UUIDs.
func New() *Generator {
	return &Generator{NewID: uuid.NewString}
}

// Generate returns the nodes and edges of template name with fresh ids and
// handles already routed for the template layout.
func (g *Generator) Generate(name Name) ([]diagram.Node, []diagram.Edge, error) {
	if name == "" {
		name = Blank
	}
	bp, ok := blueprints[name]
	if !ok {
		return nil, nil, appErr.New(appErr.CodeInvalid, fmt.Sprintf("unknown template %q", name)).WithMeta("template", string(name))
	}

	nodeIDs := map[string]string{}
	colIDs := map[string]string{}
	nodes := make([]diagram.Node, 0, len(bp.tables))
	for _, t := range bp.tables {
		id := g.NewID()
		nodeIDs[t.key] = id
		cols := make([]diagram.Column, 0, len(t.columns))
		for _, c := range t.columns {
			cid := g.NewID()
			colIDs[t.key+"."+c.key] = cid
			cols = append(cols, diagram.Column{ID: cid, Name: c.name, Type: c.typ, IsPk: c.pk, IsFk: c.fk})
		}
		nodes = append(nodes, diagram.Node{
			ID:       id,
			Type:     diagram.NodeTypeTable,
			Position: diagram.Position{X: t.x, Y: t.y},
			Data:     diagram.TableData{Label: t.key, Columns: cols},
		})
	}

	edges := make([]diagram.Edge, 0, len(bp.relations))
	for _, r := range bp.relations {
		edges = append(edges, diagram.Edge{
			ID:           g.NewID(),
			Source:       nodeIDs[r.from],
			Target:       nodeIDs[r.to],
			SourceHandle: colIDs[r.from+"."+r.fromCol],
			TargetHandle: colIDs[r.to+"."+r.toCol],
		})
	}
	return nodes, routing.Repair(edges, nodes), nil
}
