package parser

import (
	"github.com/solifugus/mbl/internal/ast"
	"github.com/solifugus/mbl/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.VAR:
		return p.parseVarStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.FUNCTION:
		return p.parseFunctionStatement()
	case token.ON:
		return p.parseTriggerStatement()
	case token.CONSTRAINT:
		return p.parseConstraintStatement()
	case token.LBRACE:
		// `{ key: ...` opens a record literal rather than a block.
		if p.peekTokenIs(token.IDENT) || p.peekTokenIs(token.STRING) {
			saved := *p.l
			afterKey := p.l.NextToken()
			*p.l = saved
			if afterKey.Type == token.COLON {
				return p.parseExpressionStatement()
			}
		}
		return p.parseBlockStatement()
	case token.SEMICOLON:
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVarStatement() *ast.VarStatement {
	stmt := &ast.VarStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		return stmt
	}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}

	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	if p.curTokenIs(token.EOF) {
		p.errorAt(block.Token, "unterminated block")
	}
	return block
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Consequence = p.parseBlockStatement()

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			stmt.Alternative = p.parseIfStatement()
		} else {
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			stmt.Alternative = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

// parseForStatement handles both loop forms:
//
//	for init; cond; update { ... }
//	for item in items { ... }
func (p *Parser) parseForStatement() ast.Statement {
	forToken := p.curToken

	if p.peekTokenIs(token.IDENT) {
		// Two tokens of lookahead are needed to tell the forms apart;
		// detect for-in by consuming the identifier and checking for
		// 'in'.
		p.nextToken()
		ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		if p.peekTokenIs(token.IN) {
			p.nextToken()
			p.nextToken()
			stmt := &ast.ForInStatement{Token: forToken, Name: ident}
			stmt.Iterable = p.parseExpression(LOWEST)
			if !p.expectPeek(token.LBRACE) {
				return nil
			}
			stmt.Body = p.parseBlockStatement()
			return stmt
		}
		// Not for-in: the identifier starts the init clause.
		return p.parseCStyleFor(forToken, p.parseInitFrom(ident))
	}

	return p.parseCStyleFor(forToken, nil)
}

// parseInitFrom finishes parsing an init clause whose leading
// identifier has already been consumed.
func (p *Parser) parseInitFrom(ident *ast.Identifier) ast.Statement {
	stmt := &ast.ExpressionStatement{Token: ident.Token}
	left := ast.Expression(ident)
	for !p.peekTokenIs(token.SEMICOLON) && LOWEST < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			break
		}
		p.nextToken()
		left = infix(left)
	}
	stmt.Expression = left
	return stmt
}

func (p *Parser) parseCStyleFor(forToken token.Token, init ast.Statement) *ast.ForStatement {
	stmt := &ast.ForStatement{Token: forToken}

	if init == nil && !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		if p.curTokenIs(token.VAR) {
			init = p.parseVarStatementNoSemicolon()
		} else {
			init = &ast.ExpressionStatement{Token: p.curToken, Expression: p.parseExpression(LOWEST)}
		}
	}
	stmt.Init = init

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		stmt.Condition = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	if !p.peekTokenIs(token.LBRACE) {
		p.nextToken()
		stmt.Update = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

// parseVarStatementNoSemicolon parses a var clause inside a for
// header, where the trailing semicolon belongs to the header.
func (p *Parser) parseVarStatementNoSemicolon() *ast.VarStatement {
	stmt := &ast.VarStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Value = p.parseExpression(LOWEST)
	}
	return stmt
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	stmt.Parameters = p.parseParameters()

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseParameters() []*ast.Identifier {
	params := []*ast.Identifier{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}

	p.nextToken()
	params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	seen := map[string]bool{}
	for _, param := range params {
		if seen[param.Value] {
			p.errorAt(param.Token, "duplicate parameter %q", param.Value)
		}
		seen[param.Value] = true
	}
	return params
}

// parseTriggerStatement parses:
//
//	on change name: condition do { ... }
//
// where the event word is one of change, startup, shutdown, timer,
// custom.
func (p *Parser) parseTriggerStatement() *ast.TriggerStatement {
	stmt := &ast.TriggerStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	switch p.curToken.Lexeme {
	case "change", "startup", "shutdown", "timer", "custom":
		stmt.Event = p.curToken.Lexeme
	default:
		p.errorAt(p.curToken, "unknown trigger event %q", p.curToken.Lexeme)
		return nil
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)

	if !p.expectPeek(token.DO) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Action = p.parseBlockStatement()
	return stmt
}

// parseConstraintStatement parses:
//
//	constraint name: condition heal { ... }
//
// with the heal block optional.
func (p *Parser) parseConstraintStatement() *ast.ConstraintStatement {
	stmt := &ast.ConstraintStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)

	if p.peekTokenIs(token.HEAL) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		stmt.Heal = p.parseBlockStatement()
	}
	return stmt
}
