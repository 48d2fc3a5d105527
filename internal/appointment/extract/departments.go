// SPDX-License-Identifier: Apache-2.0

package extract

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed departments.yaml
var defaultDepartmentsYAML []byte

// DepartmentRule maps informal synonyms to one canonical department label.
type DepartmentRule struct {
	Label    string   `yaml:"label"`
	Synonyms []string `yaml:"synonyms"`
}

type departmentFile struct {
	Departments []DepartmentRule `yaml:"departments"`
}

type compiledDepartment struct {
	label    string
	patterns []*regexp.Regexp
}

// DepartmentTable resolves department synonyms in text. Rules are evaluated
// in order; the first synonym found as a whole word wins.
type DepartmentTable struct {
	rules []compiledDepartment
}

// NewDepartmentTable compiles rules into a table.
func NewDepartmentTable(rules []DepartmentRule) (*DepartmentTable, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("department table is empty")
	}
	t := &DepartmentTable{rules: make([]compiledDepartment, 0, len(rules))}
	for i, rule := range rules {
		label := strings.TrimSpace(rule.Label)
		if label == "" {
			return nil, fmt.Errorf("department rule %d has no label", i)
		}
		if len(rule.Synonyms) == 0 {
			return nil, fmt.Errorf("department %q has no synonyms", label)
		}
		compiled := compiledDepartment{label: label}
		for _, syn := range rule.Synonyms {
			syn = strings.Join(strings.Fields(strings.ToLower(syn)), " ")
			if syn == "" {
				return nil, fmt.Errorf("department %q has an empty synonym", label)
			}
			compiled.patterns = append(compiled.patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(syn)+`\b`))
		}
		t.rules = append(t.rules, compiled)
	}
	return t, nil
}

// ParseDepartments reads a YAML department table.
func ParseDepartments(data []byte) (*DepartmentTable, error) {
	var f departmentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal department table: %w", err)
	}
	return NewDepartmentTable(f.Departments)
}

// LoadDepartments reads a YAML department table from path.
func LoadDepartments(path string) (*DepartmentTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading department table: %w", err)
	}
	return ParseDepartments(data)
}

var (
	defaultDepartmentsOnce  sync.Once
	defaultDepartmentsTable *DepartmentTable
)

// DefaultDepartments returns the built-in department table.
func DefaultDepartments() *DepartmentTable {
	defaultDepartmentsOnce.Do(func() {
		t, err := ParseDepartments(defaultDepartmentsYAML)
		if err != nil {
			panic(fmt.Sprintf("extract: built-in department table: %v", err))
		}
		defaultDepartmentsTable = t
	})
	return defaultDepartmentsTable
}

// Lookup returns the label of the first rule with a synonym in text, or nil.
func (t *DepartmentTable) Lookup(text string) *string {
	for _, rule := range t.rules {
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				label := rule.label
				return &label
			}
		}
	}
	return nil
}

// Labels returns the canonical labels in rule order.
func (t *DepartmentTable) Labels() []string {
	labels := make([]string, len(t.rules))
	for i, rule := range t.rules {
		labels[i] = rule.label
	}
	return labels
}
