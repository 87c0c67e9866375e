package runtime

import (
	"fmt"
	"math"

	"github.com/solifugus/mbl/internal/ast"
	"github.com/solifugus/mbl/internal/token"
)

// writeOp is a prepared assignment handed to the constraint engine.
// name is the affected name; "" means static extraction was
// impossible and the write pessimistically affects every watcher.
type writeOp struct {
	name     string
	env      *Environment
	tok      token.Token
	equal    bool // new value structurally equal to current binding
	commit   func()
	rollback func()
	prior    Handle // previous binding, NoHandle when absent
	hadPrior bool
}

// evalAssignExpression implements `=` on identifier, member access,
// and index targets. The sequence for each: evaluate the right-hand
// side, compute the prospective binding, run the constraint engine,
// then commit and log the change — or restore the prior binding and
// fail with ConstraintViolation.
func (e *Evaluator) evalAssignExpression(node *ast.AssignExpression, env *Environment) (Handle, error) {
	value, err := e.Eval(node.Value, env)
	if err != nil {
		return NoHandle, err
	}

	switch target := node.Target.(type) {
	case *ast.Identifier:
		return e.assignIdentifier(node, target, value, env)
	case *ast.MemberExpression:
		return e.assignMember(node, target, value, env)
	case *ast.IndexExpression:
		return e.assignIndex(node, target, value, env)
	}
	return NoHandle, newErrorAt(InvalidAssignmentTarget, node.GetToken(),
		"cannot assign to %T", node.Target)
}

func (e *Evaluator) assignIdentifier(node *ast.AssignExpression, target *ast.Identifier, value Handle, env *Environment) (Handle, error) {
	name := target.Value
	frame := env.definingFrame(name)
	var prior Handle
	hadPrior := frame != nil
	if hadPrior {
		prior = frame.store[name]
	}

	op := writeOp{
		name:     name,
		env:      env,
		tok:      node.GetToken(),
		equal:    hadPrior && e.store().StructuralEqual(prior, value),
		prior:    prior,
		hadPrior: hadPrior,
	}
	if hadPrior {
		op.commit = func() { frame.store[name] = value }
		op.rollback = func() { frame.store[name] = prior }
	} else {
		// Assignment to an undeclared name creates it in the
		// innermost frame (see DESIGN.md on this open question).
		op.commit = func() { env.Define(name, value) }
		op.rollback = func() { delete(env.store, name) }
	}

	if err := e.rt.applyWrite(op); err != nil {
		return NoHandle, err
	}
	return value, nil
}

func (e *Evaluator) assignMember(node *ast.AssignExpression, target *ast.MemberExpression, value Handle, env *Environment) (Handle, error) {
	object, err := e.Eval(target.Object, env)
	if err != nil {
		return NoHandle, err
	}
	if e.store().Kind(object) != KindRecord {
		return NoHandle, newErrorAt(InvalidAssignmentTarget, target.GetToken(),
			"cannot assign to member of %s", e.store().Kind(object))
	}

	// Writes stay local: only the record's own fields are touched,
	// never the parent chain.
	member := target.Member.Value
	fields := e.store().RecordFields(object)
	prior, hadPrior := fields[member]

	op := writeOp{
		name:     memberPath(target),
		env:      env,
		tok:      node.GetToken(),
		equal:    hadPrior && e.store().StructuralEqual(prior, value),
		prior:    prior,
		hadPrior: hadPrior,
		commit:   func() { e.store().RecordSet(object, member, value) },
		rollback: func() {
			if hadPrior {
				e.store().RecordSet(object, member, prior)
			} else {
				delete(fields, member)
			}
		},
	}
	if err := e.rt.applyWrite(op); err != nil {
		return NoHandle, err
	}
	return value, nil
}

func (e *Evaluator) assignIndex(node *ast.AssignExpression, target *ast.IndexExpression, value Handle, env *Environment) (Handle, error) {
	left, err := e.Eval(target.Left, env)
	if err != nil {
		return NoHandle, err
	}
	if e.store().Kind(left) != KindList {
		return NoHandle, newErrorAt(InvalidAssignmentTarget, target.GetToken(),
			"cannot assign into %s", e.store().Kind(left))
	}
	idx, err := e.evalIndexValue(target, env)
	if err != nil {
		return NoHandle, err
	}
	list := e.store().List(left)
	if idx < 0 || idx >= len(list) {
		return NoHandle, newErrorAt(IndexOutOfRange, target.GetToken(),
			"index %d out of range for list of %d", idx, len(list))
	}
	prior := list[idx]

	op := writeOp{
		name:     indexPath(target),
		env:      env,
		tok:      node.GetToken(),
		equal:    e.store().StructuralEqual(prior, value),
		prior:    prior,
		hadPrior: true,
		commit:   func() { e.store().ListSet(left, idx, value) },
		rollback: func() { e.store().ListSet(left, idx, prior) },
	}
	if err := e.rt.applyWrite(op); err != nil {
		return NoHandle, err
	}
	return value, nil
}

// memberPath builds the dotted affected name for a member target:
// the outermost identifier's name joined with each member name by
// ".". Any other object shape yields "" (pessimistic fan-out).
func memberPath(node *ast.MemberExpression) string {
	switch object := node.Object.(type) {
	case *ast.Identifier:
		return object.Value + "." + node.Member.Value
	case *ast.MemberExpression:
		prefix := memberPath(object)
		if prefix == "" {
			return ""
		}
		return prefix + "." + node.Member.Value
	}
	return ""
}

// indexPath builds the affected name for an index target with a
// constant number index whose root is an identifier: "name[i]". Any
// other shape yields "" (pessimistic fan-out). This is explicitly a
// tie-break: correctness is preserved by treating the write as
// affecting every watcher when static extraction is impossible.
func indexPath(node *ast.IndexExpression) string {
	root, ok := node.Left.(*ast.Identifier)
	if !ok {
		return ""
	}
	lit, ok := node.Index.(*ast.NumberLiteral)
	if !ok || lit.Value != math.Trunc(lit.Value) {
		return ""
	}
	return fmt.Sprintf("%s[%d]", root.Value, int(lit.Value))
}
