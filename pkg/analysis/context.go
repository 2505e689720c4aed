package analysis

// QueryContext carries per-statement request values. The analyzer forwards
// them unchanged when it constructs a detached base scope; it never
// interprets them beyond the default schema used for unqualified lookups.
type QueryContext struct {
	User          string
	DefaultSchema string
	RequestID     string
}

// AuthzConfig is the authorization configuration forwarded to every scope of
// a statement. Opaque to the analyzer; the adjudication phase consumes it.
type AuthzConfig struct {
	Enabled    bool
	ServerName string
}
