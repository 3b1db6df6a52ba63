// Package engine drives an ordered batch of tasks against configured
// APIs: resolve templates, build the payload, send, extract variables,
// apply delays and the stop policy.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Benjamin-Hogan/restload/internal/common"
	"github.com/Benjamin-Hogan/restload/internal/extract"
	"github.com/Benjamin-Hogan/restload/internal/httpc"
	"github.com/Benjamin-Hogan/restload/internal/task"
	"github.com/Benjamin-Hogan/restload/internal/vars"
)

// ClientProvider hands out transport clients by configuration name.
// Lookups happen once per task, so providers may build clients lazily.
// Unknown names must return an error wrapping httpc.ErrConfigNotFound.
type ClientProvider interface {
	Client(ctx context.Context, name string) (*httpc.Client, error)
}

// ClientProviderFunc adapts a function to ClientProvider.
type ClientProviderFunc func(ctx context.Context, name string) (*httpc.Client, error)

func (f ClientProviderFunc) Client(ctx context.Context, name string) (*httpc.Client, error) {
	return f(ctx, name)
}

// RunResult aggregates one run. Total counts attempted tasks only, so a
// halted run reports fewer results than the batch holds.
type RunResult struct {
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Results    []*task.Result `json:"results"`

	State RunState `json:"-"`
}

// Engine executes batches one task at a time, in order. A single Run
// owns its execution context exclusively; the engine does no locking.
type Engine struct {
	Clients     ClientProvider
	Events      Events
	StopOnError bool

	logger *common.Logger
}

// New returns an engine that sends through clients.
func New(clients ClientProvider) *Engine {
	return &Engine{Clients: clients}
}

// Run executes every task in batch in order. Task failures are recorded
// in the result, not raised; Run itself returns an error only for
// invalid input or a canceled context, and on cancellation the partial
// result is returned alongside the error.
func (e *Engine) Run(ctx context.Context, batch *task.Batch) (*RunResult, error) {
	if batch == nil {
		return nil, errors.New("engine: nil batch")
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	if e.Clients == nil {
		return nil, errors.New("engine: no client provider")
	}

	ectx := vars.NewContext()
	resolver := vars.NewResolver(ectx)
	total := len(batch.Tasks)
	state := RunCompleted

	e.log().Info("run started", "tasks", total, "stop_on_error", e.StopOnError)

	for i, t := range batch.Tasks {
		if err := sleepCtx(ctx, t.DelayBefore.Std()); err != nil {
			return e.finish(ectx, RunCanceled), err
		}

		res := e.runTask(ctx, i, total, t, resolver)
		ectx.Append(res)

		if res.Success && res.Task.ExtractVars.Len() > 0 {
			e.transition(i, total, t, StateExtracting)
			e.extractInto(ectx, i, res)
		}
		if res.Success {
			e.transition(i, total, t, StateRecorded)
		} else {
			e.transition(i, total, t, StateErrored)
		}

		e.events().OnTaskComplete(res)
		if res.Error != nil {
			e.events().OnError(res.Task, res.Error)
		}

		if err := sleepCtx(ctx, t.DelayAfter.Std()); err != nil {
			return e.finish(ectx, RunCanceled), err
		}

		if !res.Success && e.StopOnError {
			e.log().Warn("halting run", "failed_task", i, "kind", res.Error.Kind)
			state = RunHalted
			break
		}
	}

	rr := e.finish(ectx, state)
	e.events().OnRunComplete(rr.Results)
	return rr, nil
}

// runTask takes one task through resolution and sending. The returned
// result always carries the resolved copy that was (or would have been)
// sent.
func (e *Engine) runTask(ctx context.Context, i, total int, t *task.Task, r *vars.Resolver) *task.Result {
	e.transition(i, total, t, StateResolving)

	resolved, payload, errInfo := prepare(t, r)
	if errInfo != nil {
		e.log().Warn("task failed", "task", i, "kind", errInfo.Kind, "error", errInfo.Message)
		return task.Failure(resolved, errInfo)
	}

	client, err := e.Clients.Client(ctx, resolved.ConfigName)
	if err != nil {
		errInfo := clientErr(resolved.ConfigName, err)
		e.log().Warn("task failed", "task", i, "kind", errInfo.Kind, "error", errInfo.Message)
		return task.Failure(resolved, errInfo)
	}

	e.transition(i, total, t, StateSending)
	resp, err := client.Send(ctx, httpc.Request{
		Method:      resolved.CanonicalMethod(),
		Path:        resolved.Path,
		Query:       toParams(resolved.Params),
		Headers:     toParams(resolved.Headers),
		ContentType: payload.ContentType,
		Body:        payload.Body,
	})
	if err != nil {
		errInfo := &task.ErrorInfo{Kind: task.KindTransport, Message: err.Error()}
		e.log().Warn("task failed", "task", i, "kind", errInfo.Kind, "error", errInfo.Message)
		return task.Failure(resolved, errInfo)
	}

	res := &task.Result{
		Task:      resolved,
		Success:   resp.StatusCode < 400,
		Response:  resp,
		Timestamp: time.Now().UTC(),
	}
	if res.Success {
		e.log().Info("task sent", "task", i, "method", resolved.CanonicalMethod(),
			"path", resolved.Path, "status", resp.StatusCode, "duration", resp.Duration)
	} else {
		res.Error = &task.ErrorInfo{
			Kind:    task.KindTransport,
			Message: fmt.Sprintf("request failed with status %d", resp.StatusCode),
		}
		e.log().Warn("task failed", "task", i, "status", resp.StatusCode)
	}
	return res
}

// prepare resolves every templated field of t and materializes the
// payload. The resolved copy is returned even on failure so the recorded
// result shows how far substitution got.
func prepare(t *task.Task, r *vars.Resolver) (*task.Task, *task.Payload, *task.ErrorInfo) {
	c := t.Clone()

	path, err := r.ResolveString(t.Path)
	if err != nil {
		return c, nil, resolutionErr(err, "path")
	}
	c.Path = path

	if errInfo := resolvePairs(r, c.Params, "params"); errInfo != nil {
		return c, nil, errInfo
	}
	if errInfo := resolvePairs(r, c.Headers, "headers"); errInfo != nil {
		return c, nil, errInfo
	}
	if errInfo := resolvePairs(r, c.MultipartData, "multipartData"); errInfo != nil {
		return c, nil, errInfo
	}

	payload, err := task.BuildPayload(c, r.ResolveString)
	if err != nil {
		var fe *task.FileError
		if errors.As(err, &fe) {
			return c, nil, &task.ErrorInfo{Kind: task.KindFile, Message: fe.Error(), Field: fe.Field}
		}
		field := "body"
		if strings.TrimSpace(c.BodyFile) != "" {
			field = "bodyFile"
		}
		return c, nil, resolutionErr(err, field)
	}
	// The recorded copy carries the body that actually went out, which
	// for bodyFile tasks is the substituted file content.
	if payload.Kind == task.PayloadRaw {
		c.Body = string(payload.Body)
	}
	return c, payload, nil
}

// extractInto runs the task's extraction rules against its response.
// Failed rules become warnings on the result; successful ones write the
// run variable table.
func (e *Engine) extractInto(ectx *vars.Context, i int, res *task.Result) {
	for _, kv := range res.Task.ExtractVars {
		v, err := extract.Extract(res.Response, kv.Value)
		if err != nil {
			res.Warnings = append(res.Warnings, task.Warning{
				Var:     kv.Key,
				Path:    kv.Value,
				Message: err.Error(),
			})
			e.log().Warn("extraction failed", "task", i, "var", kv.Key, "path", kv.Value, "error", err.Error())
			continue
		}
		ectx.Set(kv.Key, v)
		e.log().Debug("variable extracted", "task", i, "var", kv.Key, "path", kv.Value)
	}
}

func (e *Engine) finish(ectx *vars.Context, state RunState) *RunResult {
	results := ectx.History()
	if results == nil {
		results = []*task.Result{}
	}
	rr := &RunResult{Total: len(results), Results: results, State: state}
	for _, r := range results {
		if r.Success {
			rr.Successful++
		}
	}
	e.log().Info("run finished", "state", state.String(), "total", rr.Total, "successful", rr.Successful)
	return rr
}

func (e *Engine) transition(i, total int, t *task.Task, s State) {
	e.events().OnProgress(fmt.Sprintf("task %d/%d %s %s: %s",
		i+1, total, t.CanonicalMethod(), t.Path, strings.ToLower(s.String())))
	e.log().Debug("task state", "task", i, "state", s.String())
}

func (e *Engine) events() Events {
	if e.Events == nil {
		return NopEvents{}
	}
	return e.Events
}

func (e *Engine) log() *common.Logger {
	if e.logger == nil {
		e.logger = common.GetLogger().WithComponent("engine")
	}
	return e.logger
}

func resolutionErr(err error, field string) *task.ErrorInfo {
	info := &task.ErrorInfo{Kind: task.KindVariableResolution, Message: err.Error(), Field: field}
	var re *vars.ResolutionError
	if errors.As(err, &re) {
		info.Placeholder = re.Placeholder
	}
	return info
}

func clientErr(name string, err error) *task.ErrorInfo {
	if errors.Is(err, httpc.ErrConfigNotFound) {
		return &task.ErrorInfo{
			Kind:    task.KindConfigNotFound,
			Message: fmt.Sprintf("no api config named %q", name),
			Field:   "configName",
		}
	}
	return &task.ErrorInfo{Kind: task.KindTransport, Message: err.Error()}
}

func resolvePairs(r *vars.Resolver, pairs task.Pairs, field string) *task.ErrorInfo {
	for i := range pairs {
		v, err := r.ResolveString(pairs[i].Value)
		if err != nil {
			return resolutionErr(err, field+"."+pairs[i].Key)
		}
		pairs[i].Value = v
	}
	return nil
}

func toParams(pairs task.Pairs) []httpc.Param {
	if pairs.Len() == 0 {
		return nil
	}
	out := make([]httpc.Param, 0, pairs.Len())
	for _, kv := range pairs {
		out = append(out, httpc.Param{Key: kv.Key, Value: kv.Value})
	}
	return out
}

// sleepCtx waits for d or until ctx is done. A non-positive d still
// observes cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
