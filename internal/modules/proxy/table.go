// Package proxy resolves a fund to a tradable, correlated exchange instrument.
package proxy

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/aristath/fundnav/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed proxies.yaml
var defaultTable []byte

// Table is the ordered keyword table. Order matters for equal-length ties.
type Table []domain.ProxyMapping

// DefaultTable returns the built-in table
func DefaultTable() (Table, error) {
	return ParseTable(defaultTable)
}

// LoadTable reads a table from path, or the built-in table when path is empty
func LoadTable(path string) (Table, error) {
	if path == "" {
		return DefaultTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proxy table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML sequence of {keyword, instrument} entries
func ParseTable(data []byte) (Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse proxy table: %w", err)
	}
	for i, m := range table {
		if strings.TrimSpace(m.Keyword) == "" || strings.TrimSpace(m.InstrumentID) == "" {
			return nil, fmt.Errorf("proxy table entry %d: keyword and instrument are required", i)
		}
	}
	return table, nil
}
