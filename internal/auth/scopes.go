package auth

// Scopes checked on the exercise tracker API.
const (
	ScopeLogsWrite = "logs:write"
	ScopeLogsRead  = "logs:read"
)
