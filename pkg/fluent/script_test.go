package fluent

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestScript_CallQueuesAndRuns(t *testing.T) {
	var log []string

	script := NewScript("start").
		Register("append", func(ctx context.Context, target interface{}, args ...interface{}) (interface{}, error) {
			s := target.(string) + "/" + args[0].(string)
			log = append(log, args[0].(string))
			return s, nil
		})

	script.Call("append", "one").Call("append", "two")

	if len(log) != 0 {
		t.Errorf("log = %v before Run, want empty (chaining must not execute)", log)
	}
	if script.Len() != 2 {
		t.Errorf("Len() = %d, want 2", script.Len())
	}

	got, err := script.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "start/one/two" {
		t.Errorf("Run() = %v, want start/one/two", got)
	}
	if script.Len() != 0 {
		t.Errorf("Len() after Run = %d, want 0", script.Len())
	}
}

func TestScript_UnregisteredOpPanicsAtChainTime(t *testing.T) {
	script := NewScript(nil)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Call() with unregistered name did not panic")
		}
		if !strings.Contains(r.(string), "not registered") {
			t.Errorf("panic = %v, want mention of unregistered operation", r)
		}
	}()
	script.Call("noSuchOp")
}

func TestScript_ArgsBoundAtCallTime(t *testing.T) {
	script := NewScript(0).
		Register("add", func(ctx context.Context, target interface{}, args ...interface{}) (interface{}, error) {
			return target.(int) + args[0].(int), nil
		})

	n := 5
	script.Call("add", n)
	n = 100 // must not affect the already-bound invocation

	got, err := script.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != 5 {
		t.Errorf("Run() = %v, want 5 (args bound at call time)", got)
	}
}

func TestScript_FailurePropagates(t *testing.T) {
	boom := errors.New("boom")
	ran := 0

	script := NewScript(nil).
		Register("ok", func(ctx context.Context, target interface{}, args ...interface{}) (interface{}, error) {
			ran++
			return target, nil
		}).
		Register("fail", func(ctx context.Context, target interface{}, args ...interface{}) (interface{}, error) {
			return target, boom
		})

	script.Call("ok").Call("fail").Call("ok")

	_, err := script.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
	if ran != 1 {
		t.Errorf("ops after failure ran; count = %d, want 1", ran)
	}
	if script.Len() != 0 {
		t.Errorf("Len() after failed Run = %d, want 0", script.Len())
	}
}
