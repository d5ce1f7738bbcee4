// Package jsengine evaluates JavaScript expressions for data-driven specs:
// computed assertion thresholds, derived spec parameters, and ad-hoc
// backend lookups from suite config files.
package jsengine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// Engine wraps a goja runtime with the suite's builtins.
type Engine struct {
	runtime   *goja.Runtime
	variables map[string]interface{}
	output    map[string]interface{}
	mu        sync.Mutex
}

// New creates a new engine instance.
func New() *Engine {
	e := &Engine{
		runtime:   goja.New(),
		variables: make(map[string]interface{}),
		output:    make(map[string]interface{}),
	}
	e.setupBuiltins()
	return e
}

func (e *Engine) setupBuiltins() {
	// Expose Go structs to scripts under their json field names.
	e.runtime.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	e.setupConsole()
	e.runtime.Set("json", e.jsonFunc())
	e.runtime.Set("http", e.httpModule())
	e.runtime.Set("output", e.output)
}

// setupConsole adds console.log, console.error, console.warn.
func (e *Engine) setupConsole() {
	makeConsoleFunc := func(prefix string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.Export()
			}
			if prefix != "" {
				fmt.Println(prefix, args)
			} else {
				fmt.Println(args...)
			}
			return goja.Undefined()
		}
	}

	console := e.runtime.NewObject()
	console.Set("log", makeConsoleFunc(""))
	console.Set("error", makeConsoleFunc("ERROR:"))
	console.Set("warn", makeConsoleFunc("WARN:"))
	e.runtime.Set("console", console)
}

// jsonFunc returns a helper that parses or stringifies depending on input.
func (e *Engine) jsonFunc() func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(e.runtime.NewTypeError("json requires an argument"))
		}
		arg := call.Arguments[0]
		if str, ok := arg.Export().(string); ok {
			var parsed interface{}
			if err := jsonUnmarshal(str, &parsed); err != nil {
				panic(e.runtime.NewTypeError(fmt.Sprintf("json parse failed: %v", err)))
			}
			return e.runtime.ToValue(parsed)
		}
		s, err := jsonMarshal(arg.Export())
		if err != nil {
			panic(e.runtime.NewTypeError(fmt.Sprintf("json stringify failed: %v", err)))
		}
		return e.runtime.ToValue(s)
	}
}

// SetVariable exposes a variable to scripts.
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.variables[name] = value
	e.runtime.Set(name, value)
}

// Output returns the values scripts stored on the output object.
func (e *Engine) Output() map[string]interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]interface{}, len(e.output))
	for k, v := range e.output {
		out[k] = v
	}
	return out
}

// Evaluate runs a script and returns its result.
func (e *Engine) Evaluate(script string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	value, err := e.runtime.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("script evaluation failed: %w", err)
	}
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return nil, nil
	}
	return value.Export(), nil
}

// Interpolate replaces ${expr} placeholders in a string with evaluated
// results, so spec parameters can embed expressions.
func (e *Engine) Interpolate(s string) (string, error) {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		end += start

		b.WriteString(s[:start])
		result, err := e.Evaluate(s[start+2 : end])
		if err != nil {
			return "", err
		}
		b.WriteString(fmt.Sprintf("%v", result))
		s = s[end+1:]
	}
}
