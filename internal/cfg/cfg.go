package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config adds claimgate-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	DatabaseURL           string
	ClaudeAPIKey          string
	ClaudeModel           string
	BlobDir               string
	NATSURL               string
	NATSAuditSubject      string
	OverrideToken         string
	LLMRequestsPerMinute  int
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for accessing the Claude LLM provider (empty = extraction and advisory passes disabled)")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "Claude model to use")
	fs.StringVar(&c.BlobDir, "blob-dir", "./data/documents", "directory for stored document bytes")
	fs.StringVar(&c.NATSURL, "nats-url", "", "NATS server URL for the audit event stream (empty = audit to log only)")
	fs.StringVar(&c.NATSAuditSubject, "nats-audit-subject", "claimgate.audit", "NATS subject audit events are published to")
	fs.StringVar(&c.OverrideToken, "override-token", "", "bearer token required for triage override requests")
	fs.IntVar(&c.LLMRequestsPerMinute, "llm-requests-per-minute", 30, "rate limit for extraction LLM calls (1..600)")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	if c.BlobDir == "" {
		errs = append(errs, errors.New("BLOB_DIR is required"))
	}

	if c.ClaudeAPIKey != "" && c.ClaudeModel == "" {
		errs = append(errs, errors.New("CLAUDE_MODEL is required when CLAUDE_API_KEY is set"))
	}

	if c.NATSURL != "" && c.NATSAuditSubject == "" {
		errs = append(errs, errors.New("NATS_AUDIT_SUBJECT is required when NATS_URL is set"))
	}

	// Overrides are a privileged operation; refuse to run without a token.
	if c.OverrideToken == "" {
		errs = append(errs, errors.New("OVERRIDE_TOKEN is required"))
	}

	if c.LLMRequestsPerMinute <= 0 || c.LLMRequestsPerMinute > 600 {
		errs = append(errs, fmt.Errorf("invalid LLM_REQUESTS_PER_MINUTE %d (must be 1..600)", c.LLMRequestsPerMinute))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
