package tui

import (
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/notchbar/internal/model"
)

// copyText copies text to the system clipboard.
func copyText(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard command available")
	}
	return clipboard.WriteAll(text)
}

// nodesJSON renders nodes as indented JSON.
func nodesJSON(nodes []model.Node) (string, error) {
	if nodes == nil {
		nodes = []model.Node{}
	}
	data, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// nodesYAML renders one or more nodes as YAML.
func nodesYAML(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
