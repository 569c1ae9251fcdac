// Package rbac builds the casbin enforcer that decides which principal kind
// may call which route.
package rbac

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/persist"
)

// ErrReadOnly is returned by the adapter for every write: policies ship with
// the release and are not edited at runtime.
var ErrReadOnly = errors.New("rbac: policy adapter is read-only")

// Subjects are principal kinds, objects are URL paths matched with keyMatch2
// and actions are HTTP methods or "*".
const kindModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

// NewEnforcer loads "p, kind, path, method" lines from policy.
func NewEnforcer(policy io.Reader) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(kindModel)
	if err != nil {
		return nil, err
	}

	lines, err := readPolicy(policy)
	if err != nil {
		return nil, err
	}

	return casbin.NewEnforcer(m, &csvAdapter{lines: lines})
}

func readPolicy(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	lines := make([][]string, 0, len(records))
	for _, rec := range records {
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if len(rec) == 0 || rec[0] == "" {
			continue
		}
		lines = append(lines, rec)
	}
	return lines, nil
}

type csvAdapter struct {
	lines [][]string
}

var _ persist.Adapter = (*csvAdapter)(nil)

func (a *csvAdapter) LoadPolicy(m model.Model) error {
	for _, line := range a.lines {
		if err := persist.LoadPolicyArray(line, m); err != nil {
			return err
		}
	}
	return nil
}

func (a *csvAdapter) SavePolicy(model.Model) error { return ErrReadOnly }

func (a *csvAdapter) AddPolicy(string, string, []string) error { return ErrReadOnly }

func (a *csvAdapter) RemovePolicy(string, string, []string) error { return ErrReadOnly }

func (a *csvAdapter) RemoveFilteredPolicy(string, string, int, ...string) error {
	return ErrReadOnly
}
