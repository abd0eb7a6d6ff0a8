package dist

import (
	"github.com/in-the-mood-for-mov/erlang-cnode/lib"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a connection.
	Apply(c *Connection)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(c *Connection)

// Apply applies the Connection's option
func (f OptionFunc) Apply(c *Connection) {
	f(c)
}

// WithOptions sets the decoding options
func WithOptions(options Options) Option {
	return OptionFunc(func(c *Connection) {
		c.options = options
	})
}

// WithLogger sets the logger
func WithLogger(logger lib.Logger) Option {
	return OptionFunc(func(c *Connection) {
		c.logger = logger
	})
}

// WithMetrics sets the instruments the connection records into
func WithMetrics(metrics *Metrics) Option {
	return OptionFunc(func(c *Connection) {
		c.metrics = metrics
	})
}

// WithID overrides the generated connection ID
func WithID(id string) Option {
	return OptionFunc(func(c *Connection) {
		c.id = id
	})
}
