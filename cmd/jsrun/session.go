package main

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/runtime"
)

// session is one runtime, one context and a global with standard classes.
type session struct {
	rt     *runtime.Runtime
	ctx    *runtime.Context
	global *runtime.Object
}

func openSession(logger *zap.Logger) (*session, error) {
	rt, err := runtime.New(runtime.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}
	s := &session{rt: rt}

	if s.ctx, err = rt.NewContext(); err != nil {
		_ = s.close()
		return nil, fmt.Errorf("create context: %w", err)
	}
	if s.global, err = s.ctx.NewObject(); err != nil {
		_ = s.close()
		return nil, fmt.Errorf("create global: %w", err)
	}
	if err := s.ctx.InitStandardClasses(s.global); err != nil {
		_ = s.close()
		return nil, fmt.Errorf("init standard classes: %w", err)
	}
	return s, nil
}

// eval runs src and renders the result. Object results are released after
// rendering.
func (s *session) eval(src []byte, filename string, line int) (string, error) {
	v, err := s.ctx.EvaluateScript(runtime.EvaluateParams{
		Global:   s.global,
		Source:   src,
		Filename: filename,
		Line:     line,
	})
	if err != nil {
		return "", err
	}
	return s.format(v), nil
}

func (s *session) format(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case runtime.UndefinedType:
		return "undefined"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	case *runtime.Object:
		defer func() { _ = x.Release() }()
		return s.describe(x)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// describe renders obj with JSON.stringify, falling back to a placeholder
// for values JSON cannot hold.
func (s *session) describe(obj *runtime.Object) string {
	const fallback = "[object]"

	jsonValue, err := s.ctx.GetProperty(runtime.PropertyParams{Object: s.global, Name: "JSON"})
	if err != nil {
		return fallback
	}
	json, ok := jsonValue.(*runtime.Object)
	if !ok {
		return fallback
	}
	defer func() { _ = json.Release() }()

	fnValue, err := s.ctx.GetProperty(runtime.PropertyParams{Object: json, Name: "stringify"})
	if err != nil {
		return fallback
	}
	stringify, ok := fnValue.(*runtime.Object)
	if !ok {
		return fallback
	}
	defer func() { _ = stringify.Release() }()

	out, err := s.ctx.CallFunction(runtime.CallParams{
		This:     json,
		Function: stringify,
		Args:     []any{obj},
	})
	if err != nil {
		return fallback
	}
	if text, ok := out.(string); ok {
		return text
	}
	return fallback
}

// close tears down the global, the context and the runtime. A failing step
// does not stop the later ones.
func (s *session) close() error {
	var err error
	if s.global != nil {
		err = multierr.Append(err, s.global.Release())
	}
	if s.ctx != nil {
		err = multierr.Append(err, s.ctx.Close())
	}
	return multierr.Append(err, s.rt.Close())
}
