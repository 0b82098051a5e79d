package kernel

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ExecutionParams is passed by value into every entry point that validates
// or reports. The flags change how strictly and how loudly the kernel
// checks itself, never what it computes.
type ExecutionParams struct {
	// IntermediateChecks runs the full internal-consistency checks after
	// each construction step. Failures are KindGeometry errors.
	IntermediateChecks bool `yaml:"intermediateChecks"`
	// Verbose logs construction summaries at Info level.
	Verbose bool `yaml:"verbose"`
	// SuppressErrors silences Warn-level diagnostics. Errors are still
	// returned.
	SuppressErrors bool `yaml:"suppressErrors"`

	// Logger receives diagnostics. Nil discards them.
	Logger *zap.Logger `yaml:"-"`
}

// DefaultParams returns all flags off and no logger.
func DefaultParams() ExecutionParams {
	return ExecutionParams{}
}

// ParseParams decodes YAML produced by a caller (a CLI flag file, a service
// config section). Unknown keys are rejected. The Logger is left nil.
func ParseParams(data []byte) (ExecutionParams, error) {
	var p ExecutionParams
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return ExecutionParams{}, UserErrorf("kernel.ParseParams", "decode: %v", err)
	}
	return p, nil
}

// WithLogger returns a copy of p that logs to l.
func (p ExecutionParams) WithLogger(l *zap.Logger) ExecutionParams {
	p.Logger = l
	return p
}

func (p ExecutionParams) log() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Info logs msg when Verbose is set.
func (p ExecutionParams) Info(msg string, fields ...zap.Field) {
	if p.Verbose {
		p.log().Info(msg, fields...)
	}
}

// Warn logs a non-fatal diagnostic unless SuppressErrors is set.
func (p ExecutionParams) Warn(msg string, fields ...zap.Field) {
	if !p.SuppressErrors {
		p.log().Warn(msg, fields...)
	}
}

func (p ExecutionParams) String() string {
	return fmt.Sprintf("intermediateChecks=%t verbose=%t suppressErrors=%t",
		p.IntermediateChecks, p.Verbose, p.SuppressErrors)
}
