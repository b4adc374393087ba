package report

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

// JSON renders p as indented JSON. Column and missing-value maps keep table order.
func JSON(p *quality.TableProfile) ([]byte, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return append(b, '\n'), nil
}

// YAML renders p as block-style YAML with the same keys and order as JSON.
func YAML(p *quality.TableProfile) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	// JSON is valid YAML; going through a node keeps mapping order.
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("convert profile: %w", err)
	}
	blockStyle(&doc)
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return out, nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
