package engine

import "github.com/Benjamin-Hogan/restload/internal/task"

// Events receives run progress out of band. Callbacks run on the engine
// goroutine between tasks, so implementations must return quickly.
type Events interface {
	// OnProgress fires at least once per task state transition.
	OnProgress(message string)
	// OnTaskComplete fires once per recorded result, after extraction.
	OnTaskComplete(result *task.Result)
	// OnError fires once per failed task, after OnTaskComplete.
	OnError(t *task.Task, errInfo *task.ErrorInfo)
	// OnRunComplete fires once when the run ends normally.
	OnRunComplete(results []*task.Result)
}

// NopEvents discards everything.
type NopEvents struct{}

func (NopEvents) OnProgress(string)                   {}
func (NopEvents) OnTaskComplete(*task.Result)         {}
func (NopEvents) OnError(*task.Task, *task.ErrorInfo) {}
func (NopEvents) OnRunComplete([]*task.Result)        {}

// FuncEvents adapts plain functions to Events. Nil fields are skipped.
type FuncEvents struct {
	Progress     func(message string)
	TaskComplete func(result *task.Result)
	Error        func(t *task.Task, errInfo *task.ErrorInfo)
	RunComplete  func(results []*task.Result)
}

func (f FuncEvents) OnProgress(message string) {
	if f.Progress != nil {
		f.Progress(message)
	}
}

func (f FuncEvents) OnTaskComplete(result *task.Result) {
	if f.TaskComplete != nil {
		f.TaskComplete(result)
	}
}

func (f FuncEvents) OnError(t *task.Task, errInfo *task.ErrorInfo) {
	if f.Error != nil {
		f.Error(t, errInfo)
	}
}

func (f FuncEvents) OnRunComplete(results []*task.Result) {
	if f.RunComplete != nil {
		f.RunComplete(results)
	}
}
