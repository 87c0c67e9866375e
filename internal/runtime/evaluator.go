package runtime

import (
	"github.com/solifugus/mbl/internal/ast"
)

// maxEvalDepth is the maximum nesting depth of Eval calls. Prevents
// Go stack overflow from runaway recursion in user programs.
const maxEvalDepth = 10000

// Evaluator walks the AST and returns value handles. It is the only
// component that mutates the environment; every write goes through
// the assignment protocol in assign.go.
type Evaluator struct {
	rt    *Runtime
	depth int
}

func newEvaluator(rt *Runtime) *Evaluator {
	return &Evaluator{rt: rt}
}

func (e *Evaluator) store() *Store { return e.rt.store }

// Eval evaluates a node. Errors carry the nearest known source
// position; positions are backfilled from the node when the inner
// error has none.
func (e *Evaluator) Eval(node ast.Node, env *Environment) (Handle, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxEvalDepth {
		return NoHandle, newError(ResourceExhausted, "maximum recursion depth exceeded")
	}

	h, err := e.evalCore(node, env)
	if rerr, ok := err.(*Error); ok && rerr.Line == 0 {
		if provider, ok := node.(ast.TokenProvider); ok {
			tok := provider.GetToken()
			rerr.Line = tok.Line
			rerr.Column = tok.Column
		}
	}
	return h, err
}

func (e *Evaluator) evalCore(node ast.Node, env *Environment) (Handle, error) {
	switch node := node.(type) {
	// Statements
	case *ast.Program:
		return e.evalProgram(node, env)
	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)
	case *ast.VarStatement:
		return e.evalVarStatement(node, env)
	case *ast.BlockStatement:
		return e.evalBlockStatement(node, env)
	case *ast.IfStatement:
		return e.evalIfStatement(node, env)
	case *ast.WhileStatement:
		return e.evalWhileStatement(node, env)
	case *ast.ForStatement:
		return e.evalForStatement(node, env)
	case *ast.ForInStatement:
		return e.evalForInStatement(node, env)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(node, env)
	case *ast.FunctionStatement:
		return e.evalFunctionStatement(node, env)
	case *ast.TriggerStatement:
		return e.evalTriggerStatement(node, env)
	case *ast.ConstraintStatement:
		return e.evalConstraintStatement(node, env)

	// Literals
	case *ast.NumberLiteral:
		return e.store().NewNumber(node.Value)
	case *ast.TextLiteral:
		return e.store().NewText(node.Value)
	case *ast.BooleanLiteral:
		return e.store().Boolean(node.Value), nil
	case *ast.NilLiteral:
		return e.store().Nil(), nil
	case *ast.UnknownLiteral:
		return e.store().Unknown(), nil
	case *ast.DateLiteral:
		return e.store().NewDate(Date{Year: node.Year, Month: node.Month, Day: node.Day})
	case *ast.TimeLiteral:
		return e.store().NewTime(Time{Hour: node.Hour, Minute: node.Minute, Second: node.Second, Milli: node.Milli})
	case *ast.DateTimeLiteral:
		return e.store().NewDateTime(
			Date{Year: node.Year, Month: node.Month, Day: node.Day},
			Time{Hour: node.Hour, Minute: node.Minute, Second: node.Second, Milli: node.Milli},
		)
	case *ast.MoneyLiteral:
		currency := node.Currency
		if currency == "" {
			currency = e.rt.opts.DefaultCurrency
		}
		return e.store().NewMoney(node.Amount, currency)
	case *ast.PercentageLiteral:
		return e.store().NewPercentage(node.Value)
	case *ast.ListLiteral:
		return e.evalListLiteral(node, env)
	case *ast.RecordLiteral:
		return e.evalRecordLiteral(node, env)

	// Expressions
	case *ast.Identifier:
		return e.evalIdentifier(node, env)
	case *ast.PrefixExpression:
		return e.evalPrefixExpression(node, env)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.AssignExpression:
		return e.evalAssignExpression(node, env)
	case *ast.MemberExpression:
		return e.evalMemberExpression(node, env)
	case *ast.IndexExpression:
		return e.evalIndexExpression(node, env)
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	}
	return NoHandle, newError(InvalidValue, "unhandled AST node %T", node)
}

func (e *Evaluator) evalProgram(program *ast.Program, env *Environment) (Handle, error) {
	result := e.store().Nil()
	for _, stmt := range program.Statements {
		h, err := e.Eval(stmt, env)
		if err != nil {
			if _, ok := err.(*returnSignal); ok {
				return NoHandle, newErrorAt(ReturnOutsideFunction, stmt.GetToken(), "return outside function")
			}
			return NoHandle, err
		}
		result = h
	}
	return result, nil
}

func (e *Evaluator) evalVarStatement(node *ast.VarStatement, env *Environment) (Handle, error) {
	value := e.store().Unknown()
	if node.Value != nil {
		h, err := e.Eval(node.Value, env)
		if err != nil {
			return NoHandle, err
		}
		value = h
	}

	// Declarations are writes too: constraints watching the name run
	// before the binding commits.
	name := node.Name.Value
	prior, existed := env.store[name]
	err := e.rt.applyWrite(writeOp{
		name:     name,
		env:      env,
		tok:      node.GetToken(),
		equal:    existed && e.store().StructuralEqual(prior, value),
		prior:    prior,
		hadPrior: existed,
		commit: func() {
			env.Define(name, value)
		},
		rollback: func() {
			if existed {
				env.Define(name, prior)
			} else {
				delete(env.store, name)
			}
		},
	})
	if err != nil {
		return NoHandle, err
	}
	return value, nil
}

// evalBlockStatement evaluates statements in a fresh inner frame. A
// block evaluates to the last statement's value, or nil if empty.
func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, env *Environment) (Handle, error) {
	inner := NewEnclosedEnvironment(env)
	result := e.store().Nil()
	for _, stmt := range block.Statements {
		h, err := e.Eval(stmt, inner)
		if err != nil {
			return NoHandle, err
		}
		result = h
	}
	return result, nil
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement, env *Environment) (Handle, error) {
	cond, err := e.evalCondition(node.Condition, env)
	if err != nil {
		return NoHandle, err
	}
	if cond {
		return e.Eval(node.Consequence, env)
	}
	if node.Alternative != nil {
		return e.Eval(node.Alternative, env)
	}
	return e.store().Nil(), nil
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement, env *Environment) (Handle, error) {
	for {
		cond, err := e.evalCondition(node.Condition, env)
		if err != nil {
			return NoHandle, err
		}
		if !cond {
			return e.store().Nil(), nil
		}
		if _, err := e.Eval(node.Body, env); err != nil {
			return NoHandle, err
		}
	}
}

func (e *Evaluator) evalForStatement(node *ast.ForStatement, env *Environment) (Handle, error) {
	loopEnv := NewEnclosedEnvironment(env)
	if node.Init != nil {
		if _, err := e.Eval(node.Init, loopEnv); err != nil {
			return NoHandle, err
		}
	}
	for {
		if node.Condition != nil {
			cond, err := e.evalCondition(node.Condition, loopEnv)
			if err != nil {
				return NoHandle, err
			}
			if !cond {
				break
			}
		}
		if _, err := e.Eval(node.Body, loopEnv); err != nil {
			return NoHandle, err
		}
		if node.Update != nil {
			if _, err := e.Eval(node.Update, loopEnv); err != nil {
				return NoHandle, err
			}
		}
	}
	return e.store().Nil(), nil
}

func (e *Evaluator) evalForInStatement(node *ast.ForInStatement, env *Environment) (Handle, error) {
	iterable, err := e.Eval(node.Iterable, env)
	if err != nil {
		return NoHandle, err
	}

	loopEnv := NewEnclosedEnvironment(env)
	switch e.store().Kind(iterable) {
	case KindList:
		for _, el := range e.store().List(iterable) {
			loopEnv.Define(node.Name.Value, el)
			if _, err := e.Eval(node.Body, loopEnv); err != nil {
				return NoHandle, err
			}
		}
	case KindText:
		for _, r := range e.store().Text(iterable) {
			ch, err := e.store().NewText(string(r))
			if err != nil {
				return NoHandle, err
			}
			loopEnv.Define(node.Name.Value, ch)
			if _, err := e.Eval(node.Body, loopEnv); err != nil {
				return NoHandle, err
			}
		}
	default:
		return NoHandle, newErrorAt(TypeMismatch, node.Iterable.GetToken(),
			"cannot iterate over %s", e.store().Kind(iterable))
	}
	return e.store().Nil(), nil
}

func (e *Evaluator) evalReturnStatement(node *ast.ReturnStatement, env *Environment) (Handle, error) {
	value := e.store().Nil()
	if node.Value != nil {
		h, err := e.Eval(node.Value, env)
		if err != nil {
			return NoHandle, err
		}
		value = h
	}
	return NoHandle, &returnSignal{value: value}
}

func (e *Evaluator) evalFunctionStatement(node *ast.FunctionStatement, env *Environment) (Handle, error) {
	params := make([]string, len(node.Parameters))
	for i, p := range node.Parameters {
		params[i] = p.Value
	}
	fn, err := e.store().NewFunction(&Function{
		Name:       node.Name.Value,
		Parameters: params,
		Body:       node.Body,
		Env:        env, // closure
	})
	if err != nil {
		return NoHandle, err
	}
	env.Define(node.Name.Value, fn)
	return fn, nil
}

var triggerEvents = map[string]TriggerEvent{
	"change":   EventDataChanged,
	"startup":  EventStartup,
	"shutdown": EventShutdown,
	"timer":    EventTimer,
	"custom":   EventCustom,
}

func (e *Evaluator) evalTriggerStatement(node *ast.TriggerStatement, env *Environment) (Handle, error) {
	event, ok := triggerEvents[node.Event]
	if !ok {
		return NoHandle, newErrorAt(InvalidValue, node.GetToken(), "unknown trigger event %q", node.Event)
	}
	h, err := e.store().NewTrigger(&Trigger{
		Name:      node.Name.Value,
		Event:     event,
		Condition: node.Condition,
		Action:    node.Action,
	})
	if err != nil {
		return NoHandle, err
	}
	if err := e.rt.registerTrigger(h); err != nil {
		return NoHandle, err
	}
	return h, nil
}

func (e *Evaluator) evalConstraintStatement(node *ast.ConstraintStatement, env *Environment) (Handle, error) {
	var heal ast.Node
	if node.Heal != nil {
		heal = node.Heal
	}
	h, err := e.store().NewConstraint(&Constraint{
		Name:      node.Name.Value,
		Condition: node.Condition,
		Heal:      heal,
	})
	if err != nil {
		return NoHandle, err
	}
	if err := e.rt.registerConstraint(h, env); err != nil {
		return NoHandle, err
	}
	return h, nil
}

// evalCondition evaluates a control-flow condition, requiring a
// boolean result.
func (e *Evaluator) evalCondition(expr ast.Expression, env *Environment) (bool, error) {
	h, err := e.Eval(expr, env)
	if err != nil {
		return false, err
	}
	if e.store().Kind(h) != KindBoolean {
		return false, newErrorAt(TypeMismatch, expr.GetToken(),
			"condition must be boolean, got %s", e.store().Kind(h))
	}
	return e.store().Bool(h), nil
}
