package manifest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/agentstation/mavroute/pkg/constants"
	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/logging"
	"github.com/agentstation/mavroute/pkg/metrics"
)

// StdinPath makes LoadFile read standard input.
const StdinPath = "-"

type options struct {
	metrics *metrics.Metrics
	maxSize int64
	stdin   io.Reader
}

// Option configures Load and LoadFile.
type Option func(*options)

// WithMetrics counts every rejected entry by reason.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithMaxSize overrides constants.MaxManifestSize.
func WithMaxSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithStdin sets the reader used for StdinPath.
func WithStdin(r io.Reader) Option {
	return func(o *options) { o.stdin = r }
}

func newOptions(opts []Option) *options {
	o := &options{maxSize: constants.MaxManifestSize, stdin: os.Stdin}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LoadFile reads and parses the manifest at path. StdinPath reads standard
// input. Read failures are returned as *errors.IOError.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	if path == StdinPath {
		return load(ctx, o.stdin, "stdin", o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	return load(ctx, f, path, o)
}

// Load parses the manifest read from r. source names it in logs and errors.
func Load(ctx context.Context, r io.Reader, source string, opts ...Option) (*Result, error) {
	return load(ctx, r, source, newOptions(opts))
}

func load(ctx context.Context, r io.Reader, source string, o *options) (*Result, error) {
	ctx = logging.WithManifest(ctx, source)
	logger := logging.Ctx(ctx)

	data, err := io.ReadAll(io.LimitReader(r, o.maxSize+1))
	if err != nil {
		return nil, errors.WrapIO("read", source, err)
	}
	if int64(len(data)) > o.maxSize {
		return nil, errors.NewValidationError("", source, fmt.Sprintf("manifest is larger than %d bytes", o.maxSize))
	}

	res, err := Parse(data)
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) && perr.File == "" {
			perr.File = source
		}
		logger.Error().Err(err).Msg("manifest unreadable")
		return nil, err
	}
	res.Source = source

	rejected := 0
	for _, e := range res.Entries {
		if e.OK() {
			logger.Debug().Str(logging.FieldEndpoint, e.Endpoint.Key()).Int("index", e.Index).Msg("endpoint accepted")
			continue
		}
		rejected++
		o.metrics.ObserveRejection(e.Err)
		logger.Warn().
			Err(e.Err).
			Int("index", e.Index).
			Str("name", e.Name).
			Str("reason", errors.Reason(e.Err)).
			Msg("endpoint rejected")
	}

	logger.Info().
		Int("accepted", len(res.Entries)-rejected).
		Int("rejected", rejected).
		Msg("manifest loaded")
	return res, nil
}
