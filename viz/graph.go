// ABOUTME: Graphviz cadence map of companies and outreach methods
// ABOUTME: Colors companies by status and links them to their latest method
package viz

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/commtrack/db"
	"github.com/harperreed/commtrack/models"
	"github.com/harperreed/commtrack/status"
)

type GraphGenerator struct {
	db *sql.DB
}

func NewGraphGenerator(database *sql.DB) *GraphGenerator {
	return &GraphGenerator{db: database}
}

var statusColors = map[models.Status]string{
	models.StatusOverdue:  "lightcoral",
	models.StatusDue:      "gold",
	models.StatusUpcoming: "lightgreen",
	models.StatusNone:     "lightgray",
}

// GenerateCadenceGraph renders the method sequence as a chain and attaches each
// company to the method of its latest communication. The result is DOT source.
func (g *GraphGenerator) GenerateCadenceGraph(now time.Time) (string, error) {
	methods, err := db.ListMethods(g.db)
	if err != nil {
		return "", fmt.Errorf("failed to fetch methods: %w", err)
	}
	statuses, err := db.CompanyStatuses(g.db, now)
	if err != nil {
		return "", fmt.Errorf("failed to compute statuses: %w", err)
	}

	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel(fmt.Sprintf("Communication cadence as of %s", now.Format(status.DateFormat)))
	graph.SetRankDir(cgraph.LRRank)

	methodNodes := make(map[string]*cgraph.Node)
	var prev *cgraph.Node
	for _, m := range methods {
		node, err := graph.CreateNodeByName(fmt.Sprintf("method_%d_%s", m.Sequence, m.ID.String()[:8]))
		if err != nil {
			return "", fmt.Errorf("failed to create method node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%d. %s", m.Sequence, m.Name))
		node.SetShape("ellipse")
		if m.Mandatory {
			node.SetStyle("bold")
		} else {
			node.SetStyle("dashed")
		}
		methodNodes[m.Name] = node

		if prev != nil {
			edge, err := graph.CreateEdgeByName("then", prev, node)
			if err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dotted")
		}
		prev = node
	}

	for _, cs := range statuses {
		node, err := graph.CreateNodeByName(fmt.Sprintf("company_%s", cs.ID.String()[:8]))
		if err != nil {
			return "", fmt.Errorf("failed to create company node: %w", err)
		}
		label := fmt.Sprintf("%s\nevery %d days", cs.Name, cs.Periodicity)
		if cs.NextDate != nil {
			label += fmt.Sprintf("\nnext %s (%s)", cs.NextDate.Format("Jan 2"), cs.Status)
		}
		node.SetLabel(label)
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor(statusColors[cs.Status])

		if cs.Latest == nil {
			continue
		}
		if methodNode, ok := methodNodes[string(cs.Latest.Type)]; ok {
			edge, err := graph.CreateEdgeByName("latest", node, methodNode)
			if err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetLabel(cs.Latest.Date.Format("Jan 2"))
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}
