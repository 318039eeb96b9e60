package io

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/slok/blendeval/internal/model"
)

// nodeToValue converts a YAML node into a model value keeping the mapping key order.
func nodeToValue(n *yaml.Node) (model.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return model.Null(), nil
		}
		return nodeToValue(n.Content[0])

	case yaml.AliasNode:
		return nodeToValue(n.Alias)

	case yaml.MappingNode:
		row := model.NewRow()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			val, err := nodeToValue(v)
			if err != nil {
				return model.Value{}, fmt.Errorf("key %q: %w", k.Value, err)
			}
			row.Set(k.Value, val)
		}
		return model.Object(row), nil

	case yaml.SequenceNode:
		arr := make([]model.Value, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := nodeToValue(c)
			if err != nil {
				return model.Value{}, err
			}
			arr = append(arr, val)
		}
		return model.Array(arr...), nil

	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return model.Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return model.ValueFromAny(v)
	}

	return model.Value{}, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

func nodeToRow(n yaml.Node) (*model.Row, error) {
	if n.IsZero() {
		return model.NewRow(), nil
	}
	v, err := nodeToValue(&n)
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return model.NewRow(), nil
	}
	row, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("expected a mapping, got %s", v.Kind())
	}
	return row, nil
}
