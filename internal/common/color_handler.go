package common

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// ANSI color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"
)

// badWords color a string value red: task and run outcomes plus generic
// failure vocabulary as it appears in progress lines and results.
var badWords = []string{"error", "errored", "failed", "fail", "halted", "canceled"}

// goodWords color a string value green.
var goodWords = []string{"recorded", "completed", "success", "successful", "ok"}

// ColorHandler is a colorized slog text handler for terminal output.
// Attribute values pass through the handler's masker before rendering.
type ColorHandler struct {
	opts     *slog.HandlerOptions
	writer   io.Writer
	attrs    []slog.Attr
	groups   []string
	masker   *Masker
	useColor bool
}

// NewColorHandler creates a color handler writing to w. Colors engage
// only when w is a terminal (and never on Windows).
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorHandler{
		opts:     opts,
		writer:   w,
		useColor: writerIsTerminal(w),
		masker:   NewMasker(),
	}
}

func writerIsTerminal(w io.Writer) bool {
	if runtime.GOOS == "windows" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// Enabled reports whether the handler handles records at the given level.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle renders one record: timestamp, level tag, group prefix, message,
// then masked attributes as key=value pairs.
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 1024)

	if !r.Time.IsZero() {
		buf = append(buf, h.colorize(Gray, r.Time.Format(time.RFC3339))...)
		buf = append(buf, ' ')
	}

	buf = append(buf, h.levelTag(r.Level)...)
	buf = append(buf, ' ')

	if len(h.groups) > 0 {
		buf = append(buf, h.colorize(Cyan, "["+strings.Join(h.groups, ".")+"]")...)
		buf = append(buf, ' ')
	}

	buf = append(buf, h.colorize(White, r.Message)...)

	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	for _, attr := range attrs {
		buf = append(buf, ' ')
		attr = h.maskAttr(attr)
		buf = append(buf, h.colorize(Cyan, attr.Key)...)
		buf = append(buf, '=')
		buf = append(buf, h.renderValue(attr.Value)...)
	}

	buf = append(buf, '\n')

	_, err := h.writer.Write(buf)
	return err
}

var levelTags = map[slog.Level]struct {
	color string
	label string
}{
	slog.LevelDebug: {Gray, "DEBUG"},
	slog.LevelInfo:  {Green, "INFO "},
	slog.LevelWarn:  {Yellow, "WARN "},
	slog.LevelError: {Red, "ERROR"},
}

func (h *ColorHandler) levelTag(level slog.Level) string {
	tag, ok := levelTags[level]
	if !ok {
		tag.color, tag.label = White, level.String()
	}
	return h.colorize(tag.color, "["+tag.label+"]")
}

// renderValue formats a slog.Value, coloring by kind and, for strings,
// by outcome vocabulary.
func (h *ColorHandler) renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		return h.colorize(h.stringColor(s), strconv.Quote(s))
	case slog.KindInt64:
		return h.colorize(Magenta, strconv.FormatInt(v.Int64(), 10))
	case slog.KindFloat64:
		return h.colorize(Magenta, strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return h.colorize(Green, "true")
		}
		return h.colorize(Red, "false")
	case slog.KindDuration:
		return h.colorize(Yellow, v.Duration().String())
	case slog.KindTime:
		return h.colorize(Gray, v.Time().Format(time.RFC3339))
	default:
		return h.colorize(White, v.String())
	}
}

func (h *ColorHandler) stringColor(s string) string {
	ls := strings.ToLower(s)
	for _, w := range badWords {
		if strings.Contains(ls, w) {
			return Red
		}
	}
	for _, w := range goodWords {
		if strings.Contains(ls, w) {
			return Green
		}
	}
	return White
}

// maskAttr passes the attribute through the masker; a changed value is
// rendered as its masked string form.
func (h *ColorHandler) maskAttr(attr slog.Attr) slog.Attr {
	if h.masker == nil || !h.masker.IsEnabled() {
		return attr
	}
	original := attr.Value.Any()
	masked := h.masker.MaskValue(attr.Key, original)
	if s, ok := masked.(string); ok {
		if orig, wasString := original.(string); !wasString || s != orig {
			return slog.Attr{Key: attr.Key, Value: slog.StringValue(s)}
		}
	}
	return attr
}

// WithAttrs returns a handler that includes attrs on every record.
// Slices are copied so sibling handlers derived from the same parent
// never share backing arrays.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(append(nh.attrs, h.attrs...), attrs...)
	return &nh
}

// WithGroup returns a handler with name appended to the group prefix.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	nh := *h
	nh.groups = make([]string, 0, len(h.groups)+1)
	nh.groups = append(append(nh.groups, h.groups...), name)
	return &nh
}

// SetMasker replaces the handler's masker.
func (h *ColorHandler) SetMasker(m *Masker) { h.masker = m }

// SetColorEnabled forces colors on or off regardless of the writer.
func (h *ColorHandler) SetColorEnabled(enabled bool) { h.useColor = enabled }

func (h *ColorHandler) colorize(color, text string) string {
	if !h.useColor {
		return text
	}
	return color + text + Reset
}
