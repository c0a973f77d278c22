package engine

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/token"
	"github.com/dop251/goja/unistring"
)

// scopeBinding names the real-global property holding the target object
// while a scoped script runs.
const scopeBinding = "__jsruntime_scope__"

// hoistBinding names the block-local binding that assigns top-level
// function declarations onto the target before any statement runs.
const hoistBinding = "__jsruntime_hoisted__"

// scopedScript is a source compiled to run against an arbitrary global
// object. Top-level var-declared names are listed so the caller can create
// them on the target before the program runs.
type scopedScript struct {
	program *goja.Program
	vars    []string
	strict  bool
}

// compileScoped parses src as a script and rewrites it into
//
//	with (__jsruntime_scope__) { let __jsruntime_hoisted__ = (...); body }
//
// Top-level var declarations lose their binding on the engine global and
// resolve through the with object instead. Function declarations become
// assignments onto the target, hoisted to the start of the block. A strict
// source keeps its directive on every top-level function that can carry
// one. Positions in the compiled program are those of src itself.
func compileScoped(filename, src string) (*scopedScript, error) {
	prg, err := goja.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	// early errors of the source as written, strict or not
	if _, err := goja.CompileAST(prg, false); err != nil {
		return nil, err
	}

	s := &scopedScript{
		vars:   declaredVars(prg.DeclarationList),
		strict: hasUseStrict(prg.Body),
	}

	var hoisted []ast.Expression
	body := make([]ast.Statement, 0, len(prg.Body)+1)
	for _, st := range prg.Body {
		fd, ok := st.(*ast.FunctionDeclaration)
		if !ok || fd.Function.Name == nil {
			body = append(body, st)
			continue
		}
		hoisted = append(hoisted, assignToScope(fd.Function))
	}
	if len(hoisted) > 0 {
		idx := hoisted[0].Idx0()
		body = append([]ast.Statement{&ast.LexicalDeclaration{
			Idx:   idx,
			Token: token.LET,
			List: []*ast.Binding{{
				Target:      &ast.Identifier{Name: hoistBinding, Idx: idx},
				Initializer: &ast.SequenceExpression{Sequence: hoisted},
			}},
		}}, body...)
	}
	if s.strict {
		w := strictWalker{}
		w.statements(body)
	}

	var start file.Idx = 1
	if len(prg.Body) > 0 {
		start = prg.Body[0].Idx0()
	}
	wrapped := &ast.Program{
		Body: []ast.Statement{&ast.WithStatement{
			With:   start,
			Object: &ast.Identifier{Name: scopeBinding, Idx: start},
			Body:   &ast.BlockStatement{LeftBrace: start, List: body, RightBrace: start},
		}},
		File: prg.File,
	}
	s.program, err = goja.CompileAST(wrapped, false)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// assignToScope turns a function declaration into
// __jsruntime_scope__.name = function name(...) {...}.
func assignToScope(fn *ast.FunctionLiteral) ast.Expression {
	return &ast.AssignExpression{
		Operator: token.ASSIGN,
		Left: &ast.DotExpression{
			Left:       &ast.Identifier{Name: scopeBinding, Idx: fn.Function},
			Identifier: ast.Identifier{Name: fn.Name.Name, Idx: fn.Name.Idx},
		},
		Right: fn,
	}
}

// hasUseStrict reports whether the directive prologue of list holds
// 'use strict'.
func hasUseStrict(list []ast.Statement) bool {
	for _, st := range list {
		es, ok := st.(*ast.ExpressionStatement)
		if !ok {
			return false
		}
		lit, ok := es.Expression.(*ast.StringLiteral)
		if !ok {
			return false
		}
		if lit.Literal == `'use strict'` || lit.Literal == `"use strict"` {
			return true
		}
	}
	return false
}

// declaredVars lists the names bound by var declarations, in source order.
func declaredVars(decls []*ast.VariableDeclaration) []string {
	var names []string
	seen := make(map[unistring.String]bool)
	add := func(n unistring.String) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n.String())
		}
	}
	for _, d := range decls {
		for _, b := range d.List {
			boundNames(b.Target, add)
		}
	}
	return names
}

func boundNames(target ast.Expression, add func(unistring.String)) {
	switch t := target.(type) {
	case *ast.Identifier:
		add(t.Name)
	case *ast.AssignExpression:
		boundNames(t.Left, add)
	case *ast.ArrayPattern:
		for _, e := range t.Elements {
			if e != nil {
				boundNames(e, add)
			}
		}
		if t.Rest != nil {
			boundNames(t.Rest, add)
		}
	case *ast.ObjectPattern:
		for _, p := range t.Properties {
			switch p := p.(type) {
			case *ast.PropertyShort:
				add(p.Name.Name)
			case *ast.PropertyKeyed:
				boundNames(p.Value, add)
			}
		}
		if t.Rest != nil {
			boundNames(t.Rest, add)
		}
	}
}

// strictWalker adds a 'use strict' directive to the outermost functions of
// a strict script. Functions nested in those inherit strictness. A function
// with a non-simple parameter list cannot take a directive and stays sloppy;
// the walk continues into its body.
type strictWalker struct{}

func useStrict(idx file.Idx) ast.Statement {
	return &ast.ExpressionStatement{Expression: &ast.StringLiteral{
		Idx:     idx,
		Literal: `'use strict'`,
		Value:   "use strict",
	}}
}

func simpleParams(p *ast.ParameterList) bool {
	if p == nil {
		return true
	}
	if p.Rest != nil {
		return false
	}
	for _, b := range p.List {
		if _, ok := b.Target.(*ast.Identifier); !ok || b.Initializer != nil {
			return false
		}
	}
	return true
}

func (w strictWalker) function(fn *ast.FunctionLiteral) {
	if fn.Body == nil || hasUseStrict(fn.Body.List) {
		return
	}
	if simpleParams(fn.ParameterList) {
		fn.Body.List = append([]ast.Statement{useStrict(fn.Body.LeftBrace)}, fn.Body.List...)
		return
	}
	w.params(fn.ParameterList)
	w.statements(fn.Body.List)
}

func (w strictWalker) arrow(fn *ast.ArrowFunctionLiteral) {
	if !simpleParams(fn.ParameterList) {
		w.params(fn.ParameterList)
		switch b := fn.Body.(type) {
		case *ast.BlockStatement:
			w.statements(b.List)
		case *ast.ExpressionBody:
			w.expr(b.Expression)
		}
		return
	}
	switch b := fn.Body.(type) {
	case *ast.BlockStatement:
		if !hasUseStrict(b.List) {
			b.List = append([]ast.Statement{useStrict(b.LeftBrace)}, b.List...)
		}
	case *ast.ExpressionBody:
		idx := b.Expression.Idx0()
		fn.Body = &ast.BlockStatement{
			LeftBrace:  idx,
			List:       []ast.Statement{useStrict(idx), &ast.ReturnStatement{Return: idx, Argument: b.Expression}},
			RightBrace: b.Expression.Idx1(),
		}
	}
}

func (w strictWalker) params(p *ast.ParameterList) {
	if p == nil {
		return
	}
	for _, b := range p.List {
		w.binding(b)
	}
	w.expr(p.Rest)
}

func (w strictWalker) binding(b *ast.Binding) {
	if b == nil {
		return
	}
	w.expr(b.Target)
	w.expr(b.Initializer)
}

func (w strictWalker) statements(list []ast.Statement) {
	for _, st := range list {
		w.statement(st)
	}
}

func (w strictWalker) statement(st ast.Statement) {
	switch s := st.(type) {
	case *ast.BlockStatement:
		w.statements(s.List)
	case *ast.ExpressionStatement:
		w.expr(s.Expression)
	case *ast.FunctionDeclaration:
		w.function(s.Function)
	case *ast.VariableStatement:
		for _, b := range s.List {
			w.binding(b)
		}
	case *ast.LexicalDeclaration:
		for _, b := range s.List {
			w.binding(b)
		}
	case *ast.IfStatement:
		w.expr(s.Test)
		w.statement(s.Consequent)
		w.statement(s.Alternate)
	case *ast.ForStatement:
		switch init := s.Initializer.(type) {
		case *ast.ForLoopInitializerExpression:
			w.expr(init.Expression)
		case *ast.ForLoopInitializerVarDeclList:
			for _, b := range init.List {
				w.binding(b)
			}
		case *ast.ForLoopInitializerLexicalDecl:
			for _, b := range init.LexicalDeclaration.List {
				w.binding(b)
			}
		}
		w.expr(s.Test)
		w.expr(s.Update)
		w.statement(s.Body)
	case *ast.ForInStatement:
		w.forInto(s.Into)
		w.expr(s.Source)
		w.statement(s.Body)
	case *ast.ForOfStatement:
		w.forInto(s.Into)
		w.expr(s.Source)
		w.statement(s.Body)
	case *ast.WhileStatement:
		w.expr(s.Test)
		w.statement(s.Body)
	case *ast.DoWhileStatement:
		w.statement(s.Body)
		w.expr(s.Test)
	case *ast.LabelledStatement:
		w.statement(s.Statement)
	case *ast.ReturnStatement:
		w.expr(s.Argument)
	case *ast.ThrowStatement:
		w.expr(s.Argument)
	case *ast.SwitchStatement:
		w.expr(s.Discriminant)
		for _, c := range s.Body {
			w.expr(c.Test)
			w.statements(c.Consequent)
		}
	case *ast.TryStatement:
		w.statement(s.Body)
		if s.Catch != nil {
			w.expr(s.Catch.Parameter)
			w.statement(s.Catch.Body)
		}
		if s.Finally != nil {
			w.statement(s.Finally)
		}
	case *ast.WithStatement:
		w.expr(s.Object)
		w.statement(s.Body)
	}
}

func (w strictWalker) forInto(into ast.ForInto) {
	switch i := into.(type) {
	case *ast.ForIntoVar:
		w.binding(i.Binding)
	case *ast.ForDeclaration:
		w.expr(i.Target)
	case *ast.ForIntoExpression:
		w.expr(i.Expression)
	}
}

func (w strictWalker) exprs(list []ast.Expression) {
	for _, e := range list {
		w.expr(e)
	}
}

func (w strictWalker) expr(e ast.Expression) {
	switch x := e.(type) {
	case *ast.FunctionLiteral:
		w.function(x)
	case *ast.ArrowFunctionLiteral:
		w.arrow(x)
	case *ast.ArrayLiteral:
		w.exprs(x.Value)
	case *ast.ArrayPattern:
		w.exprs(x.Elements)
		w.expr(x.Rest)
	case *ast.AssignExpression:
		w.expr(x.Left)
		w.expr(x.Right)
	case *ast.BinaryExpression:
		w.expr(x.Left)
		w.expr(x.Right)
	case *ast.BracketExpression:
		w.expr(x.Left)
		w.expr(x.Member)
	case *ast.CallExpression:
		w.expr(x.Callee)
		w.exprs(x.ArgumentList)
	case *ast.NewExpression:
		w.expr(x.Callee)
		w.exprs(x.ArgumentList)
	case *ast.ConditionalExpression:
		w.expr(x.Test)
		w.expr(x.Consequent)
		w.expr(x.Alternate)
	case *ast.DotExpression:
		w.expr(x.Left)
	case *ast.PrivateDotExpression:
		w.expr(x.Left)
	case *ast.OptionalChain:
		w.expr(x.Expression)
	case *ast.Optional:
		w.expr(x.Expression)
	case *ast.ObjectLiteral:
		for _, p := range x.Value {
			w.expr(p)
		}
	case *ast.ObjectPattern:
		for _, p := range x.Properties {
			w.expr(p)
		}
		w.expr(x.Rest)
	case *ast.PropertyShort:
		w.expr(x.Initializer)
	case *ast.PropertyKeyed:
		if x.Computed {
			w.expr(x.Key)
		}
		w.expr(x.Value)
	case *ast.SpreadElement:
		w.expr(x.Expression)
	case *ast.SequenceExpression:
		w.exprs(x.Sequence)
	case *ast.TemplateLiteral:
		w.expr(x.Tag)
		w.exprs(x.Expressions)
	case *ast.UnaryExpression:
		w.expr(x.Operand)
	case *ast.Binding:
		w.binding(x)
	}
}
