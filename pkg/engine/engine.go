// Package engine evaluates scene scripts. A script is a small Lisp program
// run in a fresh zygomys sandbox; its builtins (cube, cylinder, group,
// place, scene) assemble a tessellate.Scene.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/meshkernel/pkg/kernel"
	"github.com/chazu/meshkernel/pkg/tessellate"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"
)

// EvalError is a non-fatal error in user code, such as a parse error or a
// builtin called with bad arguments.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine runs scene scripts. It is safe for concurrent use; every
// evaluation gets its own sandbox.
type Engine struct {
	params  kernel.ExecutionParams
	timeout time.Duration
}

// NewEngine returns an engine that gives each script EvalTimeout to finish.
func NewEngine(params kernel.ExecutionParams) *Engine {
	return &Engine{params: params, timeout: EvalTimeout}
}

// Evaluate runs source and returns the scene it built.
//
//   - On success: scene, nil, nil
//   - On parse or runtime errors in the script: nil, eval errors, nil
//   - On timeout, cancellation, panic or an invalid scene: nil, nil, error
//
// Scripts add roots with (scene ...). A script that adds none but whose
// last expression is a node gets that node as its only root.
func (e *Engine) Evaluate(ctx context.Context, source string) (*tessellate.Scene, []EvalError, error) {
	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		s, evalErrs, err := evaluate(source)
		ch <- evalResult{scene: s, errors: evalErrs, err: err}
	}()

	res, err := waitWithTimeout(ctx, ch, e.timeout)
	if err != nil {
		return nil, nil, err
	}
	if res.scene != nil {
		e.params.Info("script evaluated", zap.Int("roots", len(res.scene.Nodes)))
	}
	return res.scene, res.errors, res.err
}

// Scene is Evaluate with script errors folded into a single user input
// error.
func (e *Engine) Scene(ctx context.Context, source string) (*tessellate.Scene, error) {
	s, evalErrs, err := e.Evaluate(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, ee := range evalErrs {
			msgs[i] = ee.Error()
		}
		return nil, kernel.UserErrorf("engine.Scene", "%s", strings.Join(msgs, "; "))
	}
	return s, nil
}

func evaluate(source string) (*tessellate.Scene, []EvalError, error) {
	s := &tessellate.Scene{}
	if strings.TrimSpace(source) == "" {
		return s, nil, nil
	}

	// The sandbox has no filesystem or syscall access.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, s)

	if err := env.LoadString(preprocess(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	if len(s.Nodes) == 0 {
		if n, ok := last.(*sexpNode); ok {
			s.Nodes = append(s.Nodes, n.node)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}

// linePattern matches zygomys messages of the form "Error on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches "line N: ...".
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into an EvalError, keeping
// the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			detail := strings.TrimSpace(m[2])
			if detail == "" {
				detail = strings.TrimSpace(msg)
			}
			return []EvalError{{Line: line, Message: detail}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
