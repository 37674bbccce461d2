package dirq

import (
	"os"
	"time"

	idirq "github.com/pavelsr/dirq/internal/dirq"
)

// Options holds every construction parameter shared by the typed and
// simple queue flavors. Zero-value fields take the engine's defaults:
// 60-second bucket granularity, 10 commit retries, 0755/0644 permissions,
// a no-op logger, and a no-op metrics collector.
type Options struct {
	// Umask, if non-nil, overrides the process umask while the engine
	// creates files and directories, then restores it.
	Umask *int
	// Granularity sets the width of each bucket's time window. Defaults
	// to 60 seconds.
	Granularity time.Duration
	// RndHex fixes the per-process random hex nibble used in element
	// names, normally derived from the process id. Exposed for tests
	// that need deterministic identifiers. Zero counts as unset, so the
	// nibble cannot be fixed to 0: it is then derived from the process id.
	// Values outside [0,15] are clamped into that range.
	RndHex int
	// MaxRetries bounds how many times commit retries a fresh element
	// name after a collision before giving up with ErrNameCollision.
	MaxRetries int
	// Logger receives structured debug/info/warn/error messages from the
	// engine. Defaults to NoopLogger.
	Logger Logger
	// Metrics receives operation counts and latencies. Defaults to a
	// no-op collector.
	Metrics MetricsCollector
	// DirPerm and FilePerm set the mode used when creating bucket/element
	// directories and field/payload files, before umask is applied.
	DirPerm  os.FileMode
	FilePerm os.FileMode
	// Compress enables zstd compression: of the whole payload on a simple
	// queue, or of binary-kind field values on a typed queue. It has no
	// effect on null queues.
	Compress bool
}

// Option configures Options. Pass any number to OpenTyped or OpenSimple.
type Option func(*Options)

// WithUmask overrides the process umask for this queue's filesystem
// operations.
func WithUmask(umask int) Option {
	return func(o *Options) { o.Umask = &umask }
}

// WithGranularity sets the bucket time window.
func WithGranularity(d time.Duration) Option {
	return func(o *Options) { o.Granularity = d }
}

// WithRndHex fixes the random hex nibble used in element names; 0 leaves
// it derived from the process id.
func WithRndHex(v int) Option {
	return func(o *Options) { o.RndHex = v }
}

// WithMaxRetries bounds commit's collision-retry budget.
func WithMaxRetries(n int) Option {
	return func(o *Options) { o.MaxRetries = n }
}

// WithLogger routes the engine's structured log messages to l.
func WithLogger(l Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics routes operation counts and latencies to m.
func WithMetrics(m MetricsCollector) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithPermissions sets the mode used for created directories and files,
// before umask is applied.
func WithPermissions(dirPerm, filePerm os.FileMode) Option {
	return func(o *Options) {
		o.DirPerm = dirPerm
		o.FilePerm = filePerm
	}
}

// WithCompression enables zstd compression at or above the engine's
// minimum size that saves at least 5% of the original size: of the whole
// payload on a simple queue, or of binary-kind field values on a typed
// queue. It has no effect on a null queue.
func WithCompression() Option {
	return func(o *Options) { o.Compress = true }
}

func buildConfig(root string, opts []Option) idirq.Config {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return buildConfigFromOptions(root, o)
}

func buildConfigFromOptions(root string, o Options) idirq.Config {
	cfg := idirq.Config{
		Root:        root,
		Umask:       o.Umask,
		Granularity: o.Granularity,
		RndHex:      o.RndHex,
		MaxRetries:  o.MaxRetries,
		DirPerm:     o.DirPerm,
		FilePerm:    o.FilePerm,
	}
	if o.Logger != nil {
		cfg.Logger = loggerAdapter{l: o.Logger}
	}
	if o.Metrics != nil {
		cfg.Metrics = o.Metrics
	}
	return cfg
}
