package dist

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
	"github.com/in-the-mood-for-mov/erlang-cnode/lib"
)

// ErrorPolicy tells Serve what to do when a message fails to decode.
type ErrorPolicy string

const (
	// ErrorPolicyClose stops serving and returns the error.
	ErrorPolicyClose ErrorPolicy = "close"
	// ErrorPolicySkip logs the error and goes on with the next message.
	ErrorPolicySkip ErrorPolicy = "skip"
)

// Options of a Connection.
type Options struct {
	// MaxDepth limits the nesting of decoded terms. 0 means etf.DefaultMaxDepth.
	MaxDepth int `toml:"max_depth"`
	// MaxUnpacked limits the uncompressed size of COMPRESSED terms.
	// 0 means etf.DefaultMaxUnpacked.
	MaxUnpacked int `toml:"max_unpacked"`
	// VersionMagic makes native header packets start with the version
	// magic byte, the way ei_xreceive_msg leaves the buffer.
	VersionMagic bool        `toml:"version_magic"`
	ErrorPolicy  ErrorPolicy `toml:"error_policy"`
	LogLevel     string      `toml:"log_level"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxDepth:     etf.DefaultMaxDepth,
		MaxUnpacked:  etf.DefaultMaxUnpacked,
		VersionMagic: true,
		ErrorPolicy:  ErrorPolicyClose,
		LogLevel:     "info",
	}
}

// LoadOptions reads options from a TOML file. Keys missing in the file
// keep their default value.
func LoadOptions(path string) (Options, error) {
	options := DefaultOptions()

	var raw Options
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Options{}, fmt.Errorf("load options: %w", err)
	}

	if meta.IsDefined("max_depth") {
		options.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("max_unpacked") {
		options.MaxUnpacked = raw.MaxUnpacked
	}
	if meta.IsDefined("version_magic") {
		options.VersionMagic = raw.VersionMagic
	}
	if meta.IsDefined("error_policy") {
		options.ErrorPolicy = ErrorPolicy(strings.TrimSpace(string(raw.ErrorPolicy)))
	}
	if meta.IsDefined("log_level") {
		options.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Options{}, fmt.Errorf("load options: unknown key %q", undecoded[0].String())
	}
	if err := options.Validate(); err != nil {
		return Options{}, err
	}
	return options, nil
}

// Validate checks every option and reports all the problems at once.
func (o Options) Validate() error {
	var err error
	if o.MaxDepth < 0 {
		err = multierr.Append(err, fmt.Errorf("max_depth must not be negative, got %d", o.MaxDepth))
	}
	if o.MaxUnpacked < 0 {
		err = multierr.Append(err, fmt.Errorf("max_unpacked must not be negative, got %d", o.MaxUnpacked))
	}
	switch o.ErrorPolicy {
	case ErrorPolicyClose, ErrorPolicySkip:
	default:
		err = multierr.Append(err, fmt.Errorf("error_policy must be %q or %q, got %q",
			ErrorPolicyClose, ErrorPolicySkip, o.ErrorPolicy))
	}
	if _, lerr := lib.ParseLevel(o.LogLevel); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	return err
}

func (o Options) decodeOptions(references []etf.AtomCacheKey) etf.DecodeOptions {
	return etf.DecodeOptions{
		References:  references,
		MaxDepth:    o.MaxDepth,
		MaxUnpacked: o.MaxUnpacked,
	}
}
