package telemetry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/quill/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor by reporting finished spans to a logger.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(log ports.Logger) *Bridge {
	return &Bridge{logger: log}
}

// OnStart does nothing.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, attributes and duration at debug level.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	b.logger.Debug(FormatSpan(s))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// FormatSpan renders a finished span as a single log line.
func FormatSpan(s sdktrace.ReadOnlySpan) string {
	attrs := make([]string, 0, len(s.Attributes()))
	for _, kv := range s.Attributes() {
		attrs = append(attrs, string(kv.Key)+"="+kv.Value.Emit())
	}
	sort.Strings(attrs)

	line := fmt.Sprintf("%s %s", s.Name(), s.EndTime().Sub(s.StartTime()))
	if len(attrs) > 0 {
		line += " " + strings.Join(attrs, " ")
	}
	if s.Status().Code == codes.Error {
		line += " error=" + s.Status().Description
	}
	return line
}
