// Package restload executes ordered batches of HTTP tasks against
// configured REST endpoints. Tasks may reference earlier responses and
// extracted variables through {{...}} placeholders; execution is strictly
// sequential with per-task delays and an optional stop-on-error policy.
package restload

import (
	"context"
	"io"

	"github.com/Benjamin-Hogan/restload/internal/common"
	"github.com/Benjamin-Hogan/restload/internal/config"
	"github.com/Benjamin-Hogan/restload/internal/engine"
	"github.com/Benjamin-Hogan/restload/internal/openapi"
	"github.com/Benjamin-Hogan/restload/internal/report"
	"github.com/Benjamin-Hogan/restload/internal/server"
	"github.com/Benjamin-Hogan/restload/internal/store"
	"github.com/Benjamin-Hogan/restload/internal/task"
)

// Re-export commonly used types for the public API

// Task is one declarative HTTP call within a batch.
type Task = task.Task

// Batch is an ordered list of tasks.
type Batch = task.Batch

// TaskResult is one recorded task outcome.
type TaskResult = task.Result

// ErrorInfo classifies and describes a task failure.
type ErrorInfo = task.ErrorInfo

// Warning is a non-fatal extraction failure on a successful task.
type Warning = task.Warning

// Pairs is an order-preserving set of key/value fields.
type Pairs = task.Pairs

// Engine drives a batch run.
type Engine = engine.Engine

// RunResult is the aggregate outcome of a run.
type RunResult = engine.RunResult

// Events receives run progress callbacks.
type Events = engine.Events

// NopEvents discards all run progress.
type NopEvents = engine.NopEvents

// FuncEvents adapts plain functions to the Events interface.
type FuncEvents = engine.FuncEvents

// ClientProvider hands out transport clients by configuration name.
type ClientProvider = engine.ClientProvider

// APIConfig describes one target endpoint.
type APIConfig = config.API

// Registry holds APIConfigs and implements ClientProvider.
type Registry = config.Registry

// OpenAPIDocument is a parsed endpoint table.
type OpenAPIDocument = openapi.Document

// LoadBatch reads a batch document (JSON or YAML by extension) and
// rebases relative file references onto the document's directory.
func LoadBatch(path string) (*Batch, error) { return task.LoadBatch(path) }

// ParseBatch parses an in-memory JSON batch document.
func ParseBatch(data []byte) (*Batch, error) { return task.ParseBatch(data) }

// ParseBatchYAML parses an in-memory YAML batch document.
func ParseBatchYAML(data []byte) (*Batch, error) { return task.ParseBatchYAML(data) }

// NewEngine returns an engine sending through the given provider.
func NewEngine(clients ClientProvider) *Engine { return engine.New(clients) }

// Run executes batch against the registry's configurations.
func Run(ctx context.Context, registry *Registry, batch *Batch, stopOnError bool) (*RunResult, error) {
	eng := engine.New(registry)
	eng.StopOnError = stopOnError
	return eng.Run(ctx, batch)
}

// NewRegistry returns an empty registry bound to path ("" = in-memory).
func NewRegistry(path string) *Registry { return config.NewRegistry(path) }

// LoadRegistry reads the registry file at path; a missing file yields an
// empty registry bound to that path.
func LoadRegistry(path string) (*Registry, error) { return config.Load(path) }

// DefaultRegistryPath returns the per-user registry file location.
func DefaultRegistryPath() (string, error) { return config.DefaultRegistryPath() }

// LoadOpenAPI parses the OpenAPI 3.x / Swagger 2.0 document at path.
func LoadOpenAPI(path string) (*OpenAPIDocument, error) { return openapi.Load(path) }

// Store persists run history.
type Store = store.Store

// RunRecord is one stored run.
type RunRecord = store.RunRecord

// RunSummary is a stored run without its result blob.
type RunSummary = store.RunSummary

// StoreConfig selects and parameterizes a history backend.
type StoreConfig = store.Config

// OpenStore connects the configured history backend.
func OpenStore(cfg StoreConfig) (Store, error) { return store.Open(cfg) }

// RunState reports how a run ended.
type RunState = engine.RunState

const (
	RunCompleted = engine.RunCompleted
	RunHalted    = engine.RunHalted
	RunCanceled  = engine.RunCanceled
)

// Logger is the structured logger used across the library.
type Logger = common.Logger

// SetDefaultLogger replaces the library-wide logger.
func SetDefaultLogger(l *Logger) { common.SetDefaultLogger(l) }

// GetLogger returns the library-wide logger.
func GetLogger() *Logger { return common.GetLogger() }

// NewLogger returns a text logger at the given level ("debug", "info",
// "warn", "error").
func NewLogger(level string) *Logger { return common.NewLogger(common.ParseLogLevel(level)) }

// NewJSONLogger returns a JSON logger at the given level.
func NewJSONLogger(level string) *Logger { return common.NewJSONLogger(common.ParseLogLevel(level)) }

// NewColorLogger returns a colorized terminal logger at the given level.
func NewColorLogger(level string) *Logger { return common.NewColorLogger(common.ParseLogLevel(level)) }

// EnableMasking toggles masking of credentials and tokens in log output.
func EnableMasking(enabled bool) { common.EnableMasking(enabled) }

// WriteJSONReport writes the aggregate result as indented JSON.
func WriteJSONReport(w io.Writer, rr *RunResult) error { return report.WriteJSON(w, rr) }

// WriteTextReport writes a human-readable run report.
func WriteTextReport(w io.Writer, rr *RunResult) error { return report.WriteText(w, rr) }

// SaveJSONReport writes the aggregate result as indented JSON to a file.
func SaveJSONReport(path string, rr *RunResult) error { return report.SaveJSON(path, rr) }

// SaveTextReport writes a human-readable run report to a file.
func SaveTextReport(path string, rr *RunResult) error { return report.SaveText(path, rr) }

// Server exposes registry management, ad-hoc requests and batch runs over HTTP.
type Server = server.Server

// ServerOptions configures a Server.
type ServerOptions = server.Options

// NewServer builds an HTTP API server around a registry and optional store.
func NewServer(opts ServerOptions) *Server { return server.New(opts) }
