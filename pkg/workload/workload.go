// Package workload loads, generates and replays scripts of tree operations.
package workload

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/c9s/ordmap/pkg/rbtree"
)

var log = logrus.WithField("component", "workload")

type OpType string

const (
	OpInsert OpType = "insert"
	OpUpsert OpType = "upsert"
	OpDelete OpType = "delete"
	OpSearch OpType = "search"
)

func (t *OpType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	op := OpType(strings.ToLower(strings.TrimSpace(s)))
	switch op {
	case OpInsert, OpUpsert, OpDelete, OpSearch:
		*t = op
		return nil
	}

	return errors.Errorf("line %d: unsupported operation %q", value.Line, s)
}

type Operation struct {
	Op    OpType  `yaml:"op"`
	Keys  []int64 `yaml:"keys"`
	Value string  `yaml:"value,omitempty"`
}

type Script struct {
	// Validate checks the red-black invariants after each entry of Operations
	Validate   bool        `yaml:"validate,omitempty"`
	Operations []Operation `yaml:"operations"`
}

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read workload %s", path)
	}

	script, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse workload %s", path)
	}

	return script, nil
}

func Parse(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, err
	}

	for i, op := range script.Operations {
		if op.Op == "" {
			return nil, errors.Errorf("operation #%d: missing op", i)
		}
	}

	return &script, nil
}

func (s *Script) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Count returns the number of single-key operations in the script.
func (s *Script) Count() (n int) {
	for _, op := range s.Operations {
		n += len(op.Keys)
	}
	return n
}

type Report struct {
	Inserted   int `json:"inserted"`
	Updated    int `json:"updated"`
	Duplicates int `json:"duplicates"`
	Deleted    int `json:"deleted"`
	Hits       int `json:"hits"`
	Misses     int `json:"misses"`

	// Validations counts the invariant checks, one per operation entry
	Validations int `json:"validations,omitempty"`

	// Missing lists the keys that a delete could not find
	Missing []int64 `json:"missing,omitempty"`
}

// Apply runs the script against tree. Absent keys are counted, not fatal; the
// returned error is set only when validation is enabled and fails.
func Apply(tree *rbtree.Tree[int64, string], script *Script) (*Report, error) {
	return ApplyWithProgress(tree, script, nil)
}

// ApplyWithProgress calls progress once for every key processed.
func ApplyWithProgress(tree *rbtree.Tree[int64, string], script *Script, progress func()) (*Report, error) {
	report := &Report{}
	for i, op := range script.Operations {
		for _, key := range op.Keys {
			applyOne(tree, op, key, report)

			if progress != nil {
				progress()
			}
		}

		if script.Validate {
			report.Validations++
			if err := tree.Validate(); err != nil {
				return report, errors.Wrapf(err, "invariant violated after operation #%d (%s)", i, op.Op)
			}
		}
	}

	return report, nil
}

func applyOne(tree *rbtree.Tree[int64, string], op Operation, key int64, report *Report) {
	switch op.Op {
	case OpInsert:
		if err := tree.Insert(key, op.Value); err != nil {
			log.WithError(err).Debugf("insert skipped")
			report.Duplicates++
			return
		}
		report.Inserted++

	case OpUpsert:
		if tree.Upsert(key, op.Value) {
			report.Inserted++
		} else {
			report.Updated++
		}

	case OpDelete:
		if err := tree.Delete(key); err != nil {
			log.WithError(err).Debugf("delete skipped")
			report.Missing = append(report.Missing, key)
			return
		}
		report.Deleted++

	case OpSearch:
		if tree.Contains(key) {
			report.Hits++
		} else {
			report.Misses++
		}
	}
}
