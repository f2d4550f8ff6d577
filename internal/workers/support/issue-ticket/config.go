// internal/workers/support/issue-ticket/config.go
package issueticket

import (
	"time"

	"entity-mcp/internal/support"
)

type Config struct {
	Timeout              time.Duration
	IDPrefix             string
	CancellationSentinel string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:              5 * time.Second,
		IDPrefix:             support.DefaultIDPrefix,
		CancellationSentinel: support.DefaultCancellationSentinel,
	}
}
