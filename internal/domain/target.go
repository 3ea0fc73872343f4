package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAmbiguousTarget is returned when both agent and employee references are set.
var ErrAmbiguousTarget = errors.New("target must reference an agent or an employee, not both")

// Target is the profile a rating or complaint refers to: an agent, an employee, or nothing.
// The zero value is None.
type Target struct {
	kind ProfileKind
	id   int64
}

// NoTarget returns the empty target used by general complaints.
func NoTarget() Target { return Target{} }

// ForAgent targets the agent with the given id.
func ForAgent(id int64) Target { return Target{kind: KindAgent, id: id} }

// ForEmployee targets the employee with the given id.
func ForEmployee(id int64) Target { return Target{kind: KindEmployee, id: id} }

// TargetFor builds a target of the given kind.
func TargetFor(kind ProfileKind, id int64) Target { return Target{kind: kind, id: id} }

// NewTarget validates the nullable pair used at the edges (request payloads, table columns).
func NewTarget(agentID, employeeID *int64) (Target, error) {
	switch {
	case agentID != nil && employeeID != nil:
		return Target{}, ErrAmbiguousTarget
	case agentID != nil:
		if *agentID <= 0 {
			return Target{}, fmt.Errorf("invalid agent id %d", *agentID)
		}
		return ForAgent(*agentID), nil
	case employeeID != nil:
		if *employeeID <= 0 {
			return Target{}, fmt.Errorf("invalid employee id %d", *employeeID)
		}
		return ForEmployee(*employeeID), nil
	}
	return NoTarget(), nil
}

// Kind returns the profile kind, empty for None.
func (t Target) Kind() ProfileKind { return t.kind }

// ID returns the profile id, zero for None.
func (t Target) ID() int64 { return t.id }

// IsNone reports whether the target references no profile.
func (t Target) IsNone() bool { return t.kind == "" }

// Columns returns the nullable agent_id/employee_id pair.
func (t Target) Columns() (agentID, employeeID *int64) {
	id := t.id
	switch t.kind {
	case KindAgent:
		return &id, nil
	case KindEmployee:
		return nil, &id
	}
	return nil, nil
}

func (t Target) String() string {
	if t.IsNone() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", t.kind, t.id)
}

type targetJSON struct {
	Kind ProfileKind `json:"kind"`
	ID   int64       `json:"id"`
}

// MarshalJSON encodes None as null and profiles as {"kind","id"}.
func (t Target) MarshalJSON() ([]byte, error) {
	if t.IsNone() {
		return []byte("null"), nil
	}
	return json.Marshal(targetJSON{Kind: t.kind, ID: t.id})
}

func (t *Target) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = NoTarget()
		return nil
	}
	var v targetJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if _, err := ParseProfileKind(string(v.Kind)); err != nil {
		return err
	}
	if v.ID <= 0 {
		return fmt.Errorf("invalid %s id %d", v.Kind, v.ID)
	}
	*t = TargetFor(v.Kind, v.ID)
	return nil
}
