package blockapi

import (
	"net/http"

	"github.com/goliatone/go-fieldblocks/pkg/logging"
)

// GuardFunc authorises a request before it reaches the engine. Returning an
// error implementing HTTPError selects the response status.
type GuardFunc func(r *http.Request) error

type Options struct {
	FetchPath  string
	RenderPath string
	// MaxBodyBytes caps request payloads.
	MaxBodyBytes int64
	Guard        GuardFunc
	Logger       logging.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		FetchPath:    "/fetch",
		RenderPath:   "/render",
		MaxBodyBytes: 1 << 20,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.FetchPath == "" {
		opts.FetchPath = "/fetch"
	}
	if opts.RenderPath == "" {
		opts.RenderPath = "/render"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNoOpLogger()
	}
	return opts
}

func WithFetchPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FetchPath = path
	}
}

func WithRenderPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RenderPath = path
	}
}

func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = n
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger logging.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
