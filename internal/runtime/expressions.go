package runtime

import (
	"math"

	"github.com/solifugus/mbl/internal/ast"
)

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) (Handle, error) {
	if h, ok := env.Lookup(node.Value); ok {
		return h, nil
	}
	return NoHandle, newErrorAt(UndefinedName, node.GetToken(), "undefined name %q", node.Value)
}

func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, env *Environment) (Handle, error) {
	right, err := e.Eval(node.Right, env)
	if err != nil {
		return NoHandle, err
	}
	switch node.Operator {
	case "-":
		return e.store().Negate(right)
	case "!":
		return e.store().Not(right)
	}
	return NoHandle, newErrorAt(InvalidOperator, node.GetToken(), "unknown operator %s", node.Operator)
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) (Handle, error) {
	// and/or short-circuit; everything else evaluates both operands
	// left to right.
	switch node.Operator {
	case "and", "or":
		return e.evalLogicalExpression(node, env)
	}

	left, err := e.Eval(node.Left, env)
	if err != nil {
		return NoHandle, err
	}
	right, err := e.Eval(node.Right, env)
	if err != nil {
		return NoHandle, err
	}

	s := e.store()
	switch node.Operator {
	case "+":
		return s.Add(left, right)
	case "-":
		return s.Sub(left, right)
	case "*":
		return s.Mul(left, right)
	case "/":
		return s.Div(left, right)
	case "==":
		eq, err := s.Equal(left, right)
		if err != nil {
			return NoHandle, err
		}
		return s.Boolean(eq), nil
	case "!=":
		eq, err := s.Equal(left, right)
		if err != nil {
			return NoHandle, err
		}
		return s.Boolean(!eq), nil
	case "<", "<=", ">", ">=":
		c, err := s.Compare(left, right)
		if err != nil {
			return NoHandle, err
		}
		switch node.Operator {
		case "<":
			return s.Boolean(c < 0), nil
		case "<=":
			return s.Boolean(c <= 0), nil
		case ">":
			return s.Boolean(c > 0), nil
		default:
			return s.Boolean(c >= 0), nil
		}
	}
	return NoHandle, newErrorAt(InvalidOperator, node.GetToken(), "unknown operator %s", node.Operator)
}

func (e *Evaluator) evalLogicalExpression(node *ast.InfixExpression, env *Environment) (Handle, error) {
	left, err := e.Eval(node.Left, env)
	if err != nil {
		return NoHandle, err
	}
	if e.store().Kind(left) != KindBoolean {
		return NoHandle, newErrorAt(TypeMismatch, node.Left.GetToken(),
			"%s requires boolean operands, got %s", node.Operator, e.store().Kind(left))
	}
	lv := e.store().Bool(left)
	if node.Operator == "and" && !lv {
		return e.store().Boolean(false), nil
	}
	if node.Operator == "or" && lv {
		return e.store().Boolean(true), nil
	}

	right, err := e.Eval(node.Right, env)
	if err != nil {
		return NoHandle, err
	}
	if e.store().Kind(right) != KindBoolean {
		return NoHandle, newErrorAt(TypeMismatch, node.Right.GetToken(),
			"%s requires boolean operands, got %s", node.Operator, e.store().Kind(right))
	}
	return e.store().Boolean(e.store().Bool(right)), nil
}

func (e *Evaluator) evalMemberExpression(node *ast.MemberExpression, env *Environment) (Handle, error) {
	object, err := e.Eval(node.Object, env)
	if err != nil {
		return NoHandle, err
	}
	if e.store().Kind(object) != KindRecord {
		return NoHandle, newErrorAt(TypeMismatch, node.GetToken(),
			"member access on %s", e.store().Kind(object))
	}
	if h, ok := e.store().RecordLookup(object, node.Member.Value); ok {
		return h, nil
	}
	return NoHandle, newErrorAt(UndefinedName, node.Member.GetToken(),
		"record has no field %q", node.Member.Value)
}

func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, env *Environment) (Handle, error) {
	left, err := e.Eval(node.Left, env)
	if err != nil {
		return NoHandle, err
	}
	idx, err := e.evalIndexValue(node, env)
	if err != nil {
		return NoHandle, err
	}

	s := e.store()
	switch s.Kind(left) {
	case KindList:
		list := s.List(left)
		if idx < 0 || idx >= len(list) {
			return NoHandle, newErrorAt(IndexOutOfRange, node.GetToken(),
				"index %d out of range for list of %d", idx, len(list))
		}
		return list[idx], nil
	case KindText:
		text := s.Text(left)
		if idx < 0 || idx >= len(text) {
			return NoHandle, newErrorAt(IndexOutOfRange, node.GetToken(),
				"index %d out of range for text of %d", idx, len(text))
		}
		return s.NewText(string(text[idx]))
	}
	return NoHandle, newErrorAt(TypeMismatch, node.GetToken(), "cannot index %s", s.Kind(left))
}

// evalIndexValue evaluates an index expression's subscript into an
// integral int.
func (e *Evaluator) evalIndexValue(node *ast.IndexExpression, env *Environment) (int, error) {
	h, err := e.Eval(node.Index, env)
	if err != nil {
		return 0, err
	}
	if e.store().Kind(h) != KindNumber {
		return 0, newErrorAt(TypeMismatch, node.Index.GetToken(),
			"index must be a number, got %s", e.store().Kind(h))
	}
	v := e.store().Number(h)
	if v != math.Trunc(v) {
		return 0, newErrorAt(TypeMismatch, node.Index.GetToken(), "index must be an integer, got %v", v)
	}
	return int(v), nil
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) (Handle, error) {
	callee, err := e.Eval(node.Function, env)
	if err != nil {
		return NoHandle, err
	}

	args := make([]Handle, 0, len(node.Arguments))
	for _, arg := range node.Arguments {
		h, err := e.Eval(arg, env)
		if err != nil {
			return NoHandle, err
		}
		args = append(args, h)
	}

	switch e.store().Kind(callee) {
	case KindFunction:
		return e.applyFunction(node, callee, args)
	case KindBuiltin:
		return e.store().BuiltinOf(callee).Fn(e.rt, node.GetToken(), args)
	}
	return NoHandle, newErrorAt(InvalidCallTarget, node.GetToken(),
		"cannot call %s", e.store().Kind(callee))
}

// applyFunction installs a fresh frame over the function's captured
// environment, binds each parameter to its argument handle, and
// evaluates the body. A return unwinds here.
func (e *Evaluator) applyFunction(node *ast.CallExpression, callee Handle, args []Handle) (Handle, error) {
	fn := e.store().Function(callee)
	if len(args) != len(fn.Parameters) {
		return NoHandle, newErrorAt(ArgumentMismatch, node.GetToken(),
			"%s expects %d arguments, got %d", fn.Name, len(fn.Parameters), len(args))
	}

	frame := NewEnclosedEnvironment(fn.Env)
	for i, param := range fn.Parameters {
		frame.Define(param, args[i])
	}

	result, err := e.Eval(fn.Body, frame)
	if err != nil {
		if ret, ok := err.(*returnSignal); ok {
			return ret.value, nil
		}
		return NoHandle, err
	}
	return result, nil
}

func (e *Evaluator) evalListLiteral(node *ast.ListLiteral, env *Environment) (Handle, error) {
	elements := make([]Handle, 0, len(node.Elements))
	for _, el := range node.Elements {
		h, err := e.Eval(el, env)
		if err != nil {
			return NoHandle, err
		}
		elements = append(elements, h)
	}
	return e.store().NewList(elements)
}

// evalRecordLiteral builds a record; a "parent" key sets the record's
// parent rather than a field.
func (e *Evaluator) evalRecordLiteral(node *ast.RecordLiteral, env *Environment) (Handle, error) {
	fields := make(map[string]Handle, len(node.Fields))
	parent := NoHandle
	for _, field := range node.Fields {
		h, err := e.Eval(field.Value, env)
		if err != nil {
			return NoHandle, err
		}
		if field.Key == "parent" {
			if e.store().Kind(h) != KindRecord {
				return NoHandle, newErrorAt(TypeMismatch, field.Value.GetToken(),
					"record parent must be a record, got %s", e.store().Kind(h))
			}
			parent = h
			continue
		}
		fields[field.Key] = h
	}
	return e.store().NewRecord(fields, parent)
}
