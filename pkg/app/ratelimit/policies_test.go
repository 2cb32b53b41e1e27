package ratelimit

import (
	"testing"
	"time"

	domain "github.com/bazaarly/backbone/pkg/domain/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicies_AreValid(t *testing.T) {
	for _, p := range DefaultPolicies() {
		assert.NoError(t, p.Validate(), p.Name)
	}
}

func TestNewPolicyTable_Defaults(t *testing.T) {
	table, err := NewPolicyTable()
	require.NoError(t, err)

	login, ok := table.Get(PolicyLogin)
	require.True(t, ok)
	assert.Equal(t, 5, login.Limit)
	assert.Equal(t, 15*time.Minute, login.Window)
	assert.Equal(t, domain.BackendDurable, login.Backend)

	probe := table.MustGet(PolicyHealthProbe)
	assert.Equal(t, domain.BackendMemory, probe.Backend)
	assert.Len(t, table.Names(), 8)
}

func TestNewPolicyTable_Overrides(t *testing.T) {
	table, err := NewPolicyTable(
		domain.Policy{Name: PolicyLogin, Limit: 10},
		domain.Policy{Name: "search", Limit: 50, Window: time.Minute},
	)
	require.NoError(t, err)

	login := table.MustGet(PolicyLogin)
	assert.Equal(t, 10, login.Limit)
	assert.Equal(t, 15*time.Minute, login.Window)

	search := table.MustGet("search")
	assert.Equal(t, domain.BackendDurable, search.Backend)
}

func TestNewPolicyTable_RejectsInvalidOverride(t *testing.T) {
	_, err := NewPolicyTable(domain.Policy{Name: "search", Limit: 5})
	assert.Error(t, err)

	_, err = NewPolicyTable(domain.Policy{Name: PolicyLogin, Backend: "disk"})
	assert.Error(t, err)
}

func TestPolicyTable_MustGetPanicsOnUnknown(t *testing.T) {
	table, err := NewPolicyTable()
	require.NoError(t, err)
	assert.Panics(t, func() { table.MustGet("nope") })
}
