package engine

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

var (
	// first frame of a goja stack trace: "\tat fn (file:line:col(pc))"
	framePattern = regexp.MustCompile(`(?m)^\s*at (?:[^(\n]*\()?(.+?):(\d+):(\d+)\(\d+\)`)

	// every frame position, split so the line can be rewritten
	positionPattern = regexp.MustCompile(`(?m)^(\s*at (?:[^(\n]*\()?)(.+?):(\d+)(:\d+\(\d+\))`)

	// goja parser message: "file: Line 1:4 Unexpected end of input"
	syntaxPattern = regexp.MustCompile(`^(?:(.*): )?Line (\d+):(\d+) (.*)$`)
)

// raise stores err as the context's pending exception, replacing any
// earlier one.
func (c *gojaContext) raise(err error) {
	ex := c.translate(err)
	c.shiftLines(&ex.Report)
	c.pending = &ex
	c.heap.logger.Debug("exception pending",
		zap.String("name", ex.Report.Name),
		zap.String("message", ex.Report.Message),
		zap.String("file", ex.Report.Filename),
		zap.Int("line", ex.Report.Line))
}

func (c *gojaContext) translate(err error) Exception {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return c.fromThrown(ex.Value(), ex.String())
	}

	var syn *goja.CompilerSyntaxError
	if errors.As(err, &syn) {
		report := parseSyntaxMessage(syn.Message)
		if syn.File != nil {
			pos := syn.File.Position(syn.Offset)
			report.Filename, report.Line, report.Column = pos.Filename, pos.Line, pos.Column
		}
		return Exception{
			Value:  c.newSyntaxError(report.Message),
			Report: report,
		}
	}

	// stack overflow, interrupts and host errors carry no thrown value
	msg := err.Error()
	name, text := splitErrorString(msg)
	s := msg
	return Exception{
		Value: StringValue(gojaString{v: c.heap.vm.ToValue(s), s: s}),
		Report: ExceptionReport{
			Name:    name,
			Message: text,
		},
	}
}

func (c *gojaContext) fromThrown(v goja.Value, stack string) Exception {
	report := ExceptionReport{Stack: stack}

	if o, ok := v.(*goja.Object); ok {
		report.Name = c.stringProperty(o, "name")
		report.Message = c.stringProperty(o, "message")
		if report.Name == "SyntaxError" {
			if parsed := parseSyntaxMessage(report.Message); parsed.Line > 0 {
				report.Filename, report.Line, report.Column = parsed.Filename, parsed.Line, parsed.Column
				report.Message = parsed.Message
			}
		}
	} else if v != nil {
		report.Message = v.String()
	}

	if report.Line == 0 {
		if m := framePattern.FindStringSubmatch(stack); m != nil {
			report.Filename = m[1]
			report.Line, _ = strconv.Atoi(m[2])
			report.Column, _ = strconv.Atoi(m[3])
		}
	}

	return Exception{Value: c.heap.fromGoja(v), Report: report}
}

// stringProperty reads a property of a thrown object. Getters may throw
// again; such a property reads as empty.
func (c *gojaContext) stringProperty(o *goja.Object, name string) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = ""
		}
	}()
	v := o.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

func (c *gojaContext) newSyntaxError(msg string) (v Value) {
	fallback := StringValue(gojaString{v: c.heap.vm.ToValue(msg), s: msg})
	if c.heap.syntaxErr == nil {
		return fallback
	}
	defer func() {
		if r := recover(); r != nil {
			v = fallback
		}
	}()
	obj, err := c.heap.vm.New(c.heap.syntaxErr, c.heap.vm.ToValue(msg))
	if err != nil {
		return fallback
	}
	return ObjectValue(gojaObject{o: obj})
}

// shiftLines moves positions of scripts evaluated at a starting line
// other than 1 to the lines the caller asked for.
func (c *gojaContext) shiftLines(r *ExceptionReport) {
	if len(c.heap.lines) == 0 {
		return
	}
	if off := c.heap.lineOffset(r.Filename); off != 0 && r.Line > 0 {
		r.Line += off
	}
	if r.Stack == "" {
		return
	}
	r.Stack = positionPattern.ReplaceAllStringFunc(r.Stack, func(frame string) string {
		m := positionPattern.FindStringSubmatch(frame)
		off := c.heap.lineOffset(m[2])
		if off == 0 {
			return frame
		}
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return frame
		}
		return m[1] + m[2] + ":" + strconv.Itoa(n+off) + m[4]
	})
}

func parseSyntaxMessage(msg string) ExceptionReport {
	first, _, _ := strings.Cut(msg, "\n")
	m := syntaxPattern.FindStringSubmatch(first)
	if m == nil {
		return ExceptionReport{Name: "SyntaxError", Message: msg}
	}
	line, _ := strconv.Atoi(m[2])
	col, _ := strconv.Atoi(m[3])
	return ExceptionReport{
		Name:     "SyntaxError",
		Message:  m[4],
		Filename: m[1],
		Line:     line,
		Column:   col,
	}
}

// splitErrorString splits "RangeError: message" into its parts.
func splitErrorString(s string) (name, message string) {
	head, rest, found := strings.Cut(s, ": ")
	if found && head != "" && !strings.ContainsAny(head, " \t\n") && strings.HasSuffix(head, "Error") {
		return head, rest
	}
	return "Error", s
}
