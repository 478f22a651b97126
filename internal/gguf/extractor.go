// Package gguf wraps the external gguf-parser CLI, which reads quantization
// and architecture metadata from remote GGUF artifacts.
package gguf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"modeltrack/pkg/types"
)

var (
	// ErrUnavailable means the external tool is not installed. Callers are
	// expected to skip enrichment silently; this is a capability state, not
	// a failure.
	ErrUnavailable = errors.New("gguf-parser tool unavailable")
	// ErrNotFound means the tool reported a definitive 404 for the
	// artifact. Not retried.
	ErrNotFound = errors.New("gguf artifact not found")
)

const (
	maxAttempts = 3
	baseDelay   = 2 * time.Second
)

// Extractor invokes gguf-parser as a subprocess with a wall-clock timeout
// per invocation.
type Extractor struct {
	path    string
	timeout time.Duration
	delay   time.Duration
	log     zerolog.Logger
}

// New resolves the tool on PATH (or at an explicit location) and returns an
// Extractor. A missing tool is not an error: the returned Extractor reports
// Available() == false and every Extract call yields ErrUnavailable.
func New(path string, timeout time.Duration, log zerolog.Logger) *Extractor {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		log.Warn().Str("tool", path).Msg("gguf-parser not found, GGUF metadata will not be extracted")
		resolved = ""
	}
	return &Extractor{path: resolved, timeout: timeout, delay: baseDelay, log: log}
}

// Available reports whether the external tool can be invoked.
func (e *Extractor) Available() bool { return e.path != "" }

// Extract runs the tool against repo/file on the given hub and parses its
// JSON output. Transient failures are retried with exponential backoff up
// to maxAttempts; a definitive 404 is returned immediately as ErrNotFound.
func (e *Extractor) Extract(ctx context.Context, source types.Source, repo, file string) (*types.GGUFMetadata, error) {
	if !e.Available() {
		return nil, ErrUnavailable
	}
	var args []string
	switch source {
	case types.SourceHuggingFace:
		args = []string{"--hf-repo", repo, "--hf-file", file}
	case types.SourceModelScope:
		// ModelScope filenames are case sensitive.
		args = []string{"--ms-repo", repo, "--ms-file", file}
	default:
		return nil, fmt.Errorf("unsupported source: %s", source)
	}
	args = append(args, "--json")

	md, err := retry.DoWithData(
		func() (*types.GGUFMetadata, error) {
			return e.runOnce(ctx, args)
		},
		retry.Attempts(maxAttempts),
		retry.Delay(e.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrNotFound)
		}),
		retry.OnRetry(func(n uint, err error) {
			e.log.Warn().Uint("attempt", n+1).Err(err).
				Str("repo", repo).Str("file", file).
				Msg("gguf extraction failed, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}
	return md, nil
}

func (e *Extractor) runOnce(ctx context.Context, args []string) (*types.GGUFMetadata, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("gguf-parser timed out after %s", e.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "404") {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return nil, fmt.Errorf("gguf-parser: %v: %s", err, msg)
	}
	return parseOutput(stdout.Bytes())
}
