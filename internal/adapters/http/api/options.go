package api

import "github.com/okian/candidateboard/pkg/logger"

// Request limits.
const (
	defaultMaxPageSize   = 100
	defaultMaxRegenerate = 1000
)

type serverConfig struct {
	maxPageSize   int
	maxRegenerate int
	logger        logger.Logger
}

func defaultServerConfig() serverConfig {
	return serverConfig{
		maxPageSize:   defaultMaxPageSize,
		maxRegenerate: defaultMaxRegenerate,
	}
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

// WithMaxPageSize caps the page_size query parameter.
func WithMaxPageSize(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxPageSize = n
		}
	}
}

// WithMaxRegenerate caps the count accepted by POST /regenerate.
func WithMaxRegenerate(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxRegenerate = n
		}
	}
}

// WithLogger enables per-request logging tagged with the request id.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		c.logger = l
	}
}
