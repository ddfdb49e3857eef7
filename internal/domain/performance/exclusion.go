package performance

import (
	"encoding/json"
	"strings"
)

type TargetKind string

const (
	TargetEmployee TargetKind = "employee"
	TargetPosition TargetKind = "position"
)

// ExclusionTarget names the one employee or position a metric does not apply
// to. Build it with EmployeeTarget or PositionTarget; the zero value is invalid.
type ExclusionTarget struct {
	kind TargetKind
	id   string
}

func EmployeeTarget(employeeID string) ExclusionTarget {
	return ExclusionTarget{kind: TargetEmployee, id: strings.TrimSpace(employeeID)}
}

func PositionTarget(positionID string) ExclusionTarget {
	return ExclusionTarget{kind: TargetPosition, id: strings.TrimSpace(positionID)}
}

// ParseTarget builds a target from its wire form.
func ParseTarget(kind, id string) (ExclusionTarget, error) {
	var target ExclusionTarget
	switch TargetKind(strings.ToLower(strings.TrimSpace(kind))) {
	case TargetEmployee:
		target = EmployeeTarget(id)
	case TargetPosition:
		target = PositionTarget(id)
	default:
		return ExclusionTarget{}, ErrInvalidExclusion
	}
	if !target.Valid() {
		return ExclusionTarget{}, ErrInvalidExclusion
	}
	return target, nil
}

func (t ExclusionTarget) Kind() TargetKind { return t.kind }

func (t ExclusionTarget) ID() string { return t.id }

func (t ExclusionTarget) Valid() bool {
	return (t.kind == TargetEmployee || t.kind == TargetPosition) && t.id != ""
}

// Matches reports whether the target removes a metric from emp.
func (t ExclusionTarget) Matches(emp EmployeeRef) bool {
	switch t.kind {
	case TargetEmployee:
		return t.id == emp.ID
	case TargetPosition:
		return emp.PositionID != "" && t.id == emp.PositionID
	}
	return false
}

// columns returns the (employee_id, position_id) pair stored for the target.
func (t ExclusionTarget) columns() (any, any) {
	if t.kind == TargetEmployee {
		return t.id, nil
	}
	return nil, t.id
}

func targetFromColumns(employeeID, positionID *string) (ExclusionTarget, error) {
	switch {
	case employeeID != nil && positionID == nil:
		return EmployeeTarget(*employeeID), nil
	case positionID != nil && employeeID == nil:
		return PositionTarget(*positionID), nil
	}
	return ExclusionTarget{}, ErrInvalidExclusion
}

type targetJSON struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func (t ExclusionTarget) MarshalJSON() ([]byte, error) {
	return json.Marshal(targetJSON{Kind: t.kind, ID: t.id})
}

func (t *ExclusionTarget) UnmarshalJSON(data []byte) error {
	var raw targetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTarget(string(raw.Kind), raw.ID)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// validateTargets rejects any invalid target and drops duplicates.
func validateTargets(targets []ExclusionTarget) ([]ExclusionTarget, error) {
	seen := make(map[ExclusionTarget]bool, len(targets))
	out := make([]ExclusionTarget, 0, len(targets))
	for _, target := range targets {
		if !target.Valid() {
			return nil, ErrInvalidExclusion
		}
		if seen[target] {
			continue
		}
		seen[target] = true
		out = append(out, target)
	}
	return out, nil
}
