package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallerVariants(t *testing.T) {
	tests := []struct {
		name         string
		caller       Caller
		identifier   string
		canTrigger   bool
		expectedKind Kind
	}{
		{
			name:         "service caller",
			caller:       ServiceCaller{Name: "payments"},
			identifier:   "svc:payments",
			canTrigger:   true,
			expectedKind: KindService,
		},
		{
			name:         "admin user",
			caller:       AuthenticatedUser{Identifier: "u1", Roles: []string{"customer", AdminRole}},
			identifier:   "user:u1",
			canTrigger:   true,
			expectedKind: KindAuthenticated,
		},
		{
			name:         "regular user",
			caller:       AuthenticatedUser{Identifier: "u2", Roles: []string{"customer"}},
			identifier:   "user:u2",
			canTrigger:   false,
			expectedKind: KindAuthenticated,
		},
		{
			name:         "anonymous",
			caller:       Anonymous{Address: "10.0.0.1"},
			identifier:   "ip:10.0.0.1",
			canTrigger:   false,
			expectedKind: KindAnonymous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.identifier, tt.caller.RateLimitIdentifier())
			assert.Equal(t, tt.canTrigger, tt.caller.CanTriggerQueue())
			assert.Equal(t, tt.expectedKind, tt.caller.Kind())
		})
	}
}
