package domain

// TenantContext is the per-request bundle produced by tenant resolution.
// It carries everything downstream handlers need to scope SQL to the right
// schema and gate feature modules without another registry round-trip.
// It is threaded through the request's context.Context, never stored globally.
type TenantContext struct {
	TenantID       int64    `json:"tenant_id"`
	SchemaName     string   `json:"schema_name"`
	PlanType       PlanType `json:"plan_type"`
	EnabledModules []string `json:"enabled_modules"`
}

func (c *TenantContext) HasModule(module string) bool {
	for _, m := range c.EnabledModules {
		if m == module {
			return true
		}
	}
	return false
}
