package performance

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalportal/internal/platform/apperr"
)

func TestExclusionTargetConstruction(t *testing.T) {
	var zero ExclusionTarget
	assert.False(t, zero.Valid(), "zero value must be invalid")
	assert.False(t, EmployeeTarget("  ").Valid())
	assert.True(t, EmployeeTarget("emp-1").Valid())
	assert.True(t, PositionTarget("pos-1").Valid())

	_, err := ParseTarget("department", "dep-1")
	assert.True(t, errors.Is(err, ErrInvalidExclusion))
	assert.True(t, errors.Is(err, apperr.ErrConstraint))

	target, err := ParseTarget("Position", " pos-1 ")
	require.NoError(t, err)
	assert.Equal(t, TargetPosition, target.Kind())
	assert.Equal(t, "pos-1", target.ID())
}

func TestExclusionTargetMatches(t *testing.T) {
	emp := EmployeeRef{ID: "emp-1", DepartmentID: "dep-1", PositionID: "pos-1"}
	assert.True(t, EmployeeTarget("emp-1").Matches(emp))
	assert.True(t, PositionTarget("pos-1").Matches(emp))
	assert.False(t, EmployeeTarget("pos-1").Matches(emp))
	assert.False(t, PositionTarget("emp-1").Matches(emp))
	assert.False(t, ExclusionTarget{}.Matches(emp))
}

func TestExclusionTargetJSON(t *testing.T) {
	payload, err := json.Marshal(EmployeeTarget("emp-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"employee","id":"emp-1"}`, string(payload))

	var targets []ExclusionTarget
	require.NoError(t, json.Unmarshal([]byte(`[{"kind":"position","id":"pos-9"}]`), &targets))
	assert.Equal(t, []ExclusionTarget{PositionTarget("pos-9")}, targets)

	err = json.Unmarshal([]byte(`[{"kind":"employee","id":""}]`), &targets)
	assert.True(t, errors.Is(err, ErrInvalidExclusion))
}

func TestTargetFromColumns(t *testing.T) {
	emp, pos := "emp-1", "pos-1"

	target, err := targetFromColumns(&emp, nil)
	require.NoError(t, err)
	assert.Equal(t, EmployeeTarget("emp-1"), target)

	target, err = targetFromColumns(nil, &pos)
	require.NoError(t, err)
	assert.Equal(t, PositionTarget("pos-1"), target)

	_, err = targetFromColumns(&emp, &pos)
	assert.True(t, errors.Is(err, ErrInvalidExclusion))
	_, err = targetFromColumns(nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidExclusion))
}

func TestValidateTargetsDropsDuplicates(t *testing.T) {
	targets, err := validateTargets([]ExclusionTarget{EmployeeTarget("a"), EmployeeTarget("a"), PositionTarget("a")})
	require.NoError(t, err)
	assert.Len(t, targets, 2)

	_, err = validateTargets([]ExclusionTarget{EmployeeTarget("a"), {}})
	assert.True(t, errors.Is(err, ErrInvalidExclusion))
}
