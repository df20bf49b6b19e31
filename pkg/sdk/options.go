package fieldcodec

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	driverMemory = "memory"
	driverValkey = "valkey"
	driverRedis  = "redis"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string
	addrs     []string
	password  string
	keyPrefix string

	schemaName string
	fields     []Field
	schemaErr  error

	defaultLimit int
	maxLimit     int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithMemory keeps the index in process memory. This is the default.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
		c.addrs = nil
	})
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverValkey
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces every key the client writes to Redis or Valkey.
// Shards sharing one server need distinct prefixes.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithSchema declares the indexed fields. Required unless WithSchemaOf is used.
func WithSchema(name string, fields ...Field) Option {
	return optionFunc(func(c *clientConfig) {
		c.schemaName = name
		c.fields = fields
		c.schemaErr = nil
	})
}

// WithSchemaOf declares the schema from T's fieldcodec struct tags.
func WithSchemaOf[T any](name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.schemaName = name
		meta, err := parseSchema[T]()
		if err != nil {
			c.schemaErr = err
			return
		}
		c.fields = meta.schemaFields()
		c.schemaErr = nil
	})
}

// WithLimits sets the default and maximum number of hits per Sort call.
// Defaults: 10 and 1000.
func WithLimits(defaultLimit, maxLimit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLimit = defaultLimit
		c.maxLimit = maxLimit
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
