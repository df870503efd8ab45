package graph

import (
	"fmt"
	"sort"
	"strings"
)

// RenderPlantUML draws each test as a package holding its steps in order,
// coloured by status, with failure categories as notes.
func RenderPlantUML(g *Graph) string {
	var sb strings.Builder
	sb.WriteString("@startuml\n")
	sb.WriteString("skinparam shadowing false\n")
	sb.WriteString("skinparam componentStyle rectangle\n\n")

	tests := g.nodesOfType(TypeTest)
	if len(tests) == 0 {
		sb.WriteString("note \"No tests recorded\" as N1\n")
		sb.WriteString("@enduml\n")
		return sb.String()
	}
	if runs := g.nodesOfType(TypeRun); len(runs) > 0 {
		fmt.Fprintf(&sb, "title UI run %s\n\n", runs[0].Label)
	}

	for _, test := range tests {
		fmt.Fprintf(&sb, "package \"%s\" as %s %s {\n", escape(test.Label), sanitizeID(test.ID), statusColor(test.Attributes["status"]))
		var previous string
		for _, edge := range g.EdgesFrom(test.ID, EdgeHasStep) {
			step, ok := g.Node(edge.To)
			if !ok {
				continue
			}
			id := sanitizeID(step.ID)
			fmt.Fprintf(&sb, "  rectangle \"%s\" as %s %s\n", escape(step.Label), id, statusColor(step.Attributes["status"]))
			if previous != "" {
				fmt.Fprintf(&sb, "  %s --> %s\n", previous, id)
			}
			previous = id
		}
		sb.WriteString("}\n")
		for _, edge := range g.EdgesFrom(test.ID, EdgeFailedWith) {
			failure, _ := g.Node(edge.To)
			fmt.Fprintf(&sb, "note right of %s\n  %s\nend note\n", sanitizeID(test.ID), escape(failure.Label))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("@enduml\n")
	return sb.String()
}

func (g *Graph) nodesOfType(kind string) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func statusColor(status any) string {
	switch status {
	case "passed":
		return "#PaleGreen"
	case "failed":
		return "#LightCoral"
	case "skipped":
		return "#LightGray"
	}
	return ""
}

func sanitizeID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
