package meridian

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	readinessTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithTile38 configures the client to connect to a Tile38-compatible
// server.
func WithTile38(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithReadinessTimeout bounds the initial readiness check.
// Defaults to 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables SDK operation logging.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers SDK operation metrics on the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// SearchOption narrows a scan or spatial search.
type SearchOption interface {
	applySearch(*searchConfig)
}

type searchOptionFunc func(*searchConfig)

func (f searchOptionFunc) applySearch(c *searchConfig) { f(c) }

type whereClause struct {
	field string
	value float64
}

type searchConfig struct {
	wheres []whereClause
	limit  int
	count  bool
}

// Where keeps only objects whose field matches the given value.
func Where(field string, value float64) SearchOption {
	return searchOptionFunc(func(c *searchConfig) {
		c.wheres = append(c.wheres, whereClause{field: field, value: value})
	})
}

// Limit caps the number of returned objects.
func Limit(n int) SearchOption {
	return searchOptionFunc(func(c *searchConfig) {
		c.limit = n
	})
}
