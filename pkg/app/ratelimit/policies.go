package ratelimit

import (
	"fmt"
	"sort"
	"time"

	domain "github.com/bazaarly/backbone/pkg/domain/ratelimit"
)

const (
	PolicyLogin         = "login"
	PolicyPasswordReset = "password_reset"
	PolicyOrderCreate   = "order_create"
	PolicyWebhook       = "webhook"
	PolicyEmailSend     = "email_send"
	PolicySMSSend       = "sms_send"
	PolicyRideMatch     = "ride_match"
	PolicyHealthProbe   = "health_probe"
)

func DefaultPolicies() []domain.Policy {
	return []domain.Policy{
		{Name: PolicyLogin, Limit: 5, Window: 15 * time.Minute, Backend: domain.BackendDurable},
		{Name: PolicyPasswordReset, Limit: 3, Window: time.Hour, Backend: domain.BackendDurable},
		{Name: PolicyOrderCreate, Limit: 10, Window: time.Minute, Backend: domain.BackendDurable},
		{Name: PolicyWebhook, Limit: 100, Window: time.Minute, Backend: domain.BackendDurable},
		{Name: PolicyEmailSend, Limit: 20, Window: time.Hour, Backend: domain.BackendDurable},
		{Name: PolicySMSSend, Limit: 10, Window: time.Hour, Backend: domain.BackendDurable},
		{Name: PolicyRideMatch, Limit: 30, Window: time.Minute, Backend: domain.BackendDurable},
		{Name: PolicyHealthProbe, Limit: 60, Window: time.Minute, Backend: domain.BackendMemory},
	}
}

// PolicyTable holds the named limits. It is read-only after construction.
type PolicyTable struct {
	policies map[string]domain.Policy
}

// NewPolicyTable starts from DefaultPolicies and applies overrides by name.
// Zero fields in an override keep the default value.
func NewPolicyTable(overrides ...domain.Policy) (*PolicyTable, error) {
	t := &PolicyTable{policies: make(map[string]domain.Policy)}
	for _, p := range DefaultPolicies() {
		t.policies[p.Name] = p
	}
	for _, o := range overrides {
		merged, ok := t.policies[o.Name]
		if !ok {
			merged = domain.Policy{Name: o.Name, Backend: domain.BackendDurable}
		}
		if o.Limit != 0 {
			merged.Limit = o.Limit
		}
		if o.Window != 0 {
			merged.Window = o.Window
		}
		if o.Backend != "" {
			merged.Backend = o.Backend
		}
		if err := merged.Validate(); err != nil {
			return nil, fmt.Errorf("invalid rate limit override: %w", err)
		}
		t.policies[o.Name] = merged
	}
	return t, nil
}

func (t *PolicyTable) Get(name string) (domain.Policy, bool) {
	p, ok := t.policies[name]
	return p, ok
}

func (t *PolicyTable) MustGet(name string) domain.Policy {
	p, ok := t.policies[name]
	if !ok {
		panic(fmt.Sprintf("rate limit policy %q is not defined", name))
	}
	return p
}

func (t *PolicyTable) Names() []string {
	names := make([]string, 0, len(t.policies))
	for name := range t.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
