package identity

import "slices"

const AdminRole = "admin"

// Caller is the identity of whoever issued a request. It is decided once at
// the HTTP boundary and passed down as a value.
type Caller interface {
	// RateLimitIdentifier is the identifier the rate limiter counts against.
	RateLimitIdentifier() string
	// CanTriggerQueue reports whether the caller may drain the notification queue on demand.
	CanTriggerQueue() bool
	Kind() Kind
}

type Kind string

const (
	KindService       Kind = "service"
	KindAuthenticated Kind = "user"
	KindAnonymous     Kind = "anonymous"
)

// ServiceCaller is a privileged internal caller holding the service secret.
type ServiceCaller struct {
	Name string
}

func (c ServiceCaller) RateLimitIdentifier() string { return "svc:" + c.Name }
func (c ServiceCaller) CanTriggerQueue() bool       { return true }
func (c ServiceCaller) Kind() Kind                  { return KindService }

// AuthenticatedUser is an end user holding a valid bearer token.
type AuthenticatedUser struct {
	Identifier string
	Roles      []string
}

func (c AuthenticatedUser) RateLimitIdentifier() string { return "user:" + c.Identifier }
func (c AuthenticatedUser) CanTriggerQueue() bool       { return c.HasRole(AdminRole) }
func (c AuthenticatedUser) Kind() Kind                  { return KindAuthenticated }

func (c AuthenticatedUser) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Anonymous is any caller without a recognised credential, keyed by network address.
type Anonymous struct {
	Address string
}

func (c Anonymous) RateLimitIdentifier() string { return "ip:" + c.Address }
func (c Anonymous) CanTriggerQueue() bool       { return false }
func (c Anonymous) Kind() Kind                  { return KindAnonymous }
