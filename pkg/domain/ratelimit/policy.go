package ratelimit

import (
	"fmt"
	"time"
)

type Backend string

const (
	BackendDurable Backend = "durable"
	BackendMemory  Backend = "memory"
)

// Policy is a named (limit, window) pair applied to one endpoint.
type Policy struct {
	Name    string        `json:"name" mapstructure:"name"`
	Limit   int           `json:"limit" mapstructure:"limit"`
	Window  time.Duration `json:"window" mapstructure:"window"`
	Backend Backend       `json:"backend" mapstructure:"backend"`
}

func (p Policy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("policy name is required")
	}
	if p.Limit <= 0 {
		return fmt.Errorf("policy %s: limit must be positive", p.Name)
	}
	if p.Window <= 0 {
		return fmt.Errorf("policy %s: window must be positive", p.Name)
	}
	switch p.Backend {
	case BackendDurable, BackendMemory:
	default:
		return fmt.Errorf("policy %s: unknown backend %q", p.Name, p.Backend)
	}
	return nil
}
