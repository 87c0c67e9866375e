package runtime

import (
	"github.com/solifugus/mbl/internal/ast"
)

// DepIndex maintains, per watched name, the ordered set of reactive
// handles (trigger or constraint values) whose condition or healing
// action references that name.
type DepIndex struct {
	watchers map[string][]Handle
}

func newDepIndex() *DepIndex {
	return &DepIndex{watchers: make(map[string][]Handle)}
}

// Register adds h under every name in names. Re-registering the same
// handle under the same name is a no-op.
func (d *DepIndex) Register(h Handle, names []string) {
	for _, name := range names {
		if d.contains(name, h) {
			continue
		}
		d.watchers[name] = append(d.watchers[name], h)
	}
}

// Deregister removes h from every name's set.
func (d *DepIndex) Deregister(h Handle) {
	for name, set := range d.watchers {
		out := set[:0]
		for _, w := range set {
			if w != h {
				out = append(out, w)
			}
		}
		if len(out) == 0 {
			delete(d.watchers, name)
		} else {
			d.watchers[name] = out
		}
	}
}

// Watchers returns the reactive handles referencing name, in
// registration order.
func (d *DepIndex) Watchers(name string) []Handle {
	return d.watchers[name]
}

// AllWatchers returns every registered handle once, for pessimistic
// fan-out when a write's affected name could not be extracted.
func (d *DepIndex) AllWatchers() []Handle {
	seen := make(map[Handle]bool)
	var all []Handle
	for _, set := range d.watchers {
		for _, h := range set {
			if !seen[h] {
				seen[h] = true
				all = append(all, h)
			}
		}
	}
	return all
}

func (d *DepIndex) contains(name string, h Handle) bool {
	for _, w := range d.watchers[name] {
		if w == h {
			return true
		}
	}
	return false
}

// ExtractNames performs the single recursive walk that determines
// which names a condition or healing expression references:
//
//   - identifier: its name
//   - member access on a plain identifier: "object.member"
//   - member access on anything else: the object's names only
//   - binary and unary operators: the union of the operands' names
//   - call: the callee's names and all arguments' names
//   - literals and control constructs: nothing
//
// Index expressions additionally emit "name[i]" for a constant index
// on an identifier root, pairing with the affected-name rule for
// index writes.
func ExtractNames(node ast.Node) []string {
	var names []string
	seen := make(map[string]bool)
	var emit func(name string)
	emit = func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch n := n.(type) {
		case *ast.Identifier:
			emit(n.Value)
		case *ast.MemberExpression:
			if object, ok := n.Object.(*ast.Identifier); ok {
				emit(object.Value + "." + n.Member.Value)
			} else {
				walk(n.Object)
			}
		case *ast.PrefixExpression:
			walk(n.Right)
		case *ast.InfixExpression:
			walk(n.Left)
			walk(n.Right)
		case *ast.AssignExpression:
			walk(n.Target)
			walk(n.Value)
		case *ast.IndexExpression:
			if path := indexPath(n); path != "" {
				emit(path)
			}
			walk(n.Left)
			walk(n.Index)
		case *ast.CallExpression:
			walk(n.Function)
			for _, arg := range n.Arguments {
				walk(arg)
			}
		}
	}
	walk(node)
	return names
}
