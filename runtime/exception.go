package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

// fail is called after an engine call reported failure. It drains the
// context's pending exception into a ScriptError; with nothing pending the
// failure becomes an allocation error naming call.
func (c *Context) fail(phase errors.Phase, call string) error {
	ex, ok := c.ec.PendingException()
	if !ok {
		return errors.Allocation(phase, call)
	}
	c.ec.ClearPendingException()

	se := scriptError(phase, ex)
	c.rt.logger.Debug("script exception",
		zap.String("call", call),
		zap.String("name", se.Name),
		zap.String("message", se.Message),
		zap.String("file", se.Filename),
		zap.Int("line", se.Line))
	return se
}

func scriptError(phase errors.Phase, ex engine.Exception) *errors.ScriptError {
	r := ex.Report
	se := &errors.ScriptError{
		Phase:    phase,
		Name:     r.Name,
		Message:  r.Message,
		Stack:    r.Stack,
		Filename: r.Filename,
		Line:     r.Line,
		Column:   r.Column,
	}

	v := ex.Value
	switch v.Tag() {
	case engine.TagUndefined:
		se.Value = Undefined
	case engine.TagBool:
		se.Value = v.AsBool()
	case engine.TagNumber:
		se.Value = v.AsNumber()
	case engine.TagString:
		if s := v.AsString(); s != nil {
			se.Value = s.String()
		}
	}
	return se
}
