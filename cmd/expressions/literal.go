package main

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PavelStransky/expressions"
)

// parseLiteral decodes a YAML literal into a value. Scalars become ints,
// reals, bools, strings or datetimes by their YAML tag; sequences become
// arrays when their items share a kind and lists otherwise; a mapping with
// exactly the keys x and y becomes a point.
func parseLiteral(s string) (expressions.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, fmt.Errorf("invalid literal %q: %w", s, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, fmt.Errorf("invalid literal %q", s)
	}
	return literal(doc.Content[0])
}

func literal(n *yaml.Node) (expressions.Value, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return scalar(n)
	case yaml.SequenceNode:
		items := make([]expressions.Value, len(n.Content))
		for i, c := range n.Content {
			v, err := literal(c)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		if a, err := expressions.ArrayOf(items...); err == nil {
			return a, nil
		}
		return expressions.List(items), nil
	case yaml.MappingNode:
		var p struct {
			X *float64 `yaml:"x"`
			Y *float64 `yaml:"y"`
		}
		if len(n.Content) != 4 {
			return nil, fmt.Errorf("line %d: only points {x: X, y: Y} are mappings", n.Line)
		}
		if err := n.Decode(&p); err != nil {
			return nil, err
		}
		if p.X == nil || p.Y == nil {
			return nil, fmt.Errorf("line %d: only points {x: X, y: Y} are mappings", n.Line)
		}
		return expressions.Point{X: *p.X, Y: *p.Y}, nil
	case yaml.AliasNode:
		return literal(n.Alias)
	}
	return nil, fmt.Errorf("line %d: unsupported literal", n.Line)
}

func scalar(n *yaml.Node) (expressions.Value, error) {
	switch n.ShortTag() {
	case "!!int":
		var x int64
		if err := n.Decode(&x); err != nil {
			return nil, err
		}
		return expressions.Int(x), nil
	case "!!float":
		var x float64
		if err := n.Decode(&x); err != nil {
			return nil, err
		}
		return expressions.Real(x), nil
	case "!!bool":
		var x bool
		if err := n.Decode(&x); err != nil {
			return nil, err
		}
		return expressions.Bool(x), nil
	case "!!timestamp":
		var x time.Time
		if err := n.Decode(&x); err != nil {
			return nil, err
		}
		return expressions.DateTime{Time: x}, nil
	case "!!null":
		return nil, fmt.Errorf("line %d: null is not a value", n.Line)
	}
	return expressions.String(n.Value), nil
}
