package instrument

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/trace"
)

// logLevel is shared by every handler New installs, so SetLogLevel takes
// effect without rebuilding the logger.
var logLevel slog.LevelVar

// parseLevel maps debug, info, warn and error. Anything else is info.
func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// SetLogLevel changes the level of the default logger at runtime and returns
// the level applied.
func SetLogLevel(level string) slog.Level {
	l := parseLevel(level)
	if logLevel.Level() != l {
		logLevel.Set(l)
		slog.Info("log level changed", "level", l.String())
	}
	return l
}

// sourceAttr shortens the caller to "internal/<pkg>/<file>:<line>". Frames
// outside the module are dropped.
func sourceAttr(src *slog.Source) slog.Attr {
	_, rel, ok := strings.Cut(src.File, "/internal/")
	if !ok {
		return slog.Attr{}
	}
	return slog.String("file", "internal/"+rel+":"+strconv.Itoa(src.Line))
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok {
			return sourceAttr(src)
		}
	}
	return a
}

// newLogHandler builds the handler chain: request context attributes, then
// masking, then JSON to w and, when lp is set, the OTLP log bridge.
func newLogHandler(w io.Writer, serviceName string, level slog.Leveler, lp *sdklog.LoggerProvider, masker *Masker) slog.Handler {
	var sink slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	})
	if lp != nil {
		sink = fanout{sink, otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(lp))}
	}

	return &contextHandler{
		Handler:     &maskHandler{handler: sink, masker: masker},
		serviceName: serviceName,
	}
}

func initLogging(serviceName string, level slog.Level, lp *sdklog.LoggerProvider, masker *Masker) {
	logLevel.Set(level)
	slog.SetDefault(slog.New(newLogHandler(os.Stdout, serviceName, &logLevel, lp, masker)))
}

// contextHandler stamps each record with the service name, the correlation
// id and, inside a sampled or remote span, the trace and span ids.
type contextHandler struct {
	slog.Handler
	serviceName string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID := GetCorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(slog.String("trace_id", sc.TraceID().String()), slog.String("span_id", sc.SpanID().String()))
	}
	r.AddAttrs(slog.String("service", h.serviceName))

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), serviceName: h.serviceName}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), serviceName: h.serviceName}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// maskHandler rewrites sensitive attributes before they reach a sink. JSON
// carried in string or []byte values is masked too.
type maskHandler struct {
	handler slog.Handler
	masker  *Masker
}

func (h *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *maskHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.mask(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = h.mask(a)
	}
	return &maskHandler{handler: h.handler.WithAttrs(out), masker: h.masker}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{handler: h.handler.WithGroup(name), masker: h.masker}
}

func (h *maskHandler) mask(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = h.mask(ga)
		}
		a.Value = slog.GroupValue(out...)
		return a
	case slog.KindString:
		if v, ok := h.masker.Value(a.Key, a.Value.String()); ok {
			return slog.Any(a.Key, v)
		}
		if masked, ok := h.masker.JSON([]byte(a.Value.String())); ok {
			a.Value = slog.StringValue(masked)
		}
		return a
	}

	if v, ok := h.masker.Value(a.Key, a.Value.Any()); ok {
		return slog.Any(a.Key, v)
	}
	if a.Value.Kind() != slog.KindAny {
		return a
	}

	switch v := a.Value.Any().(type) {
	case map[string]any, map[string]string, []any:
		a.Value = slog.AnyValue(h.masker.Data(v))
	case []byte:
		if masked, ok := h.masker.JSON(v); ok {
			a.Value = slog.StringValue(masked)
		}
	}
	return a
}
