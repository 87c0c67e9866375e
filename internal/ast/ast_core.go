package ast

import (
	"github.com/solifugus/mbl/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its
// primary token. This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes. Nodes are immutable
// after construction.
type Node interface {
	TokenLiteral() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string // Source file path
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

// VarStatement represents a variable declaration with an optional
// initializer: var x = 5
type VarStatement struct {
	Token token.Token // The 'var' token
	Name  *Identifier
	Value Expression // Optional
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }
func (vs *VarStatement) GetToken() token.Token {
	if vs == nil {
		return token.Token{}
	}
	return vs.Token
}

// ExpressionStatement wraps an expression used in statement position.
type ExpressionStatement struct {
	Token      token.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// BlockStatement represents a braced statement sequence. A block
// evaluates to its last statement's value, or nil if empty.
type BlockStatement struct {
	Token      token.Token // The '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}

// IfStatement represents a conditional with an optional else branch.
// The else branch may be another IfStatement (else-if chains).
type IfStatement struct {
	Token       token.Token // The 'if' token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // *BlockStatement or *IfStatement, optional
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

// WhileStatement represents a while loop.
type WhileStatement struct {
	Token     token.Token // The 'while' token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token {
	if ws == nil {
		return token.Token{}
	}
	return ws.Token
}

// ForStatement represents a C-style loop. Init, Condition and Update
// are all optional.
type ForStatement struct {
	Token     token.Token // The 'for' token
	Init      Statement
	Condition Expression
	Update    Expression
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// ForInStatement represents iteration over a list or text value:
// for item in items { ... }
type ForInStatement struct {
	Token    token.Token // The 'for' token
	Name     *Identifier
	Iterable Expression
	Body     *BlockStatement
}

func (fi *ForInStatement) statementNode()       {}
func (fi *ForInStatement) TokenLiteral() string { return fi.Token.Lexeme }
func (fi *ForInStatement) GetToken() token.Token {
	if fi == nil {
		return token.Token{}
	}
	return fi.Token
}

// ReturnStatement represents a return with an optional value.
type ReturnStatement struct {
	Token token.Token // The 'return' token
	Value Expression  // Optional
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// FunctionStatement defines a named function and binds it in the
// enclosing scope.
type FunctionStatement struct {
	Token      token.Token // The 'function' token
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// TriggerStatement declares and registers a trigger:
// on change name: condition do { ... }
// The event lexeme selects the trigger's event kind (change, startup,
// shutdown, timer, custom).
type TriggerStatement struct {
	Token     token.Token // The 'on' token
	Event     string
	Name      *Identifier
	Condition Expression
	Action    *BlockStatement
}

func (ts *TriggerStatement) statementNode()       {}
func (ts *TriggerStatement) TokenLiteral() string { return ts.Token.Lexeme }
func (ts *TriggerStatement) GetToken() token.Token {
	if ts == nil {
		return token.Token{}
	}
	return ts.Token
}

// ConstraintStatement declares and registers a constraint:
// constraint name: condition heal { ... }
type ConstraintStatement struct {
	Token     token.Token // The 'constraint' token
	Name      *Identifier
	Condition Expression
	Heal      *BlockStatement // Optional
}

func (cs *ConstraintStatement) statementNode()       {}
func (cs *ConstraintStatement) TokenLiteral() string { return cs.Token.Lexeme }
func (cs *ConstraintStatement) GetToken() token.Token {
	if cs == nil {
		return token.Token{}
	}
	return cs.Token
}
