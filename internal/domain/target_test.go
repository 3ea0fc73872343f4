package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewTarget(t *testing.T) {
	tests := []struct {
		name       string
		agentID    *int64
		employeeID *int64
		want       Target
		wantErr    bool
	}{
		{name: "neither set is a general target", want: NoTarget()},
		{name: "agent only", agentID: ptr[int64](7), want: ForAgent(7)},
		{name: "employee only", employeeID: ptr[int64](3), want: ForEmployee(3)},
		{name: "both set is rejected", agentID: ptr[int64](7), employeeID: ptr[int64](3), wantErr: true},
		{name: "non-positive agent id", agentID: ptr[int64](0), wantErr: true},
		{name: "negative employee id", employeeID: ptr[int64](-2), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTarget(tt.agentID, tt.employeeID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargetColumnsRoundTrip(t *testing.T) {
	for _, target := range []Target{NoTarget(), ForAgent(11), ForEmployee(4)} {
		agentID, employeeID := target.Columns()
		assert.False(t, agentID != nil && employeeID != nil, "at most one column may be set")
		back, err := NewTarget(agentID, employeeID)
		require.NoError(t, err)
		assert.Equal(t, target, back)
	}
}

func TestTargetAccessors(t *testing.T) {
	assert.True(t, NoTarget().IsNone())
	assert.Equal(t, "none", NoTarget().String())

	target := ForEmployee(9)
	assert.False(t, target.IsNone())
	assert.Equal(t, KindEmployee, target.Kind())
	assert.Equal(t, int64(9), target.ID())
	assert.Equal(t, "employee:9", target.String())
	assert.Equal(t, ForAgent(2), TargetFor(KindAgent, 2))
}

func TestParseProfileKind(t *testing.T) {
	kind, err := ParseProfileKind("agent")
	require.NoError(t, err)
	assert.Equal(t, KindAgent, kind)

	for _, bad := range []string{"", "Agent", "admin", "employees"} {
		_, err := ParseProfileKind(bad)
		assert.Error(t, err, bad)
	}
}

func TestRoleProfileKind(t *testing.T) {
	kind, ok := RoleAgent.ProfileKind()
	assert.True(t, ok)
	assert.Equal(t, KindAgent, kind)

	kind, ok = RoleFrontline.ProfileKind()
	assert.True(t, ok)
	assert.Equal(t, KindEmployee, kind)

	_, ok = RoleAdmin.ProfileKind()
	assert.False(t, ok)
	assert.Equal(t, RoleFrontline, KindEmployee.StaffRole())
}

func TestTargetJSON(t *testing.T) {
	for _, target := range []Target{NoTarget(), ForAgent(7), ForEmployee(3)} {
		data, err := json.Marshal(target)
		require.NoError(t, err)
		var got Target
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, target, got)
	}

	data, err := json.Marshal(ForAgent(7))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"agent","id":7}`, string(data))

	var bad Target
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"robot","id":1}`), &bad))
}
