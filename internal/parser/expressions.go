package parser

import (
	"strconv"

	"github.com/solifugus/mbl/internal/ast"
	"github.com/solifugus/mbl/internal/token"
)

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Lexeme, 64)
	if err != nil {
		p.errorAt(p.curToken, "could not parse %q as number", p.curToken.Lexeme)
		return nil
	}
	lit.Value = value
	return lit
}

func (p *Parser) parseTextLiteral() ast.Expression {
	return &ast.TextLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNilLiteral() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

func (p *Parser) parseUnknownLiteral() ast.Expression {
	return &ast.UnknownLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Lexeme}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Lexeme,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

// parseAssignExpression parses `target = value`. Assignment is
// right-associative and only identifier, member access, and index
// targets are accepted; other targets are rejected at evaluation time
// so that the error carries the runtime's error kind.
func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	expr := &ast.AssignExpression{Token: p.curToken, Target: left}
	p.nextToken()
	expr.Value = p.parseExpression(ASSIGN - 1)
	return expr
}

// parsePercentagePostfix turns `N %` into a percentage literal. Only
// number literals may take the postfix; anything else is an error.
func (p *Parser) parsePercentagePostfix(left ast.Expression) ast.Expression {
	num, ok := left.(*ast.NumberLiteral)
	if !ok {
		p.errorAt(p.curToken, "%% may only follow a number literal")
		return nil
	}
	return &ast.PercentageLiteral{Token: num.Token, Value: num.Value}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	expr := &ast.CallExpression{Token: p.curToken, Function: function}
	expr.Arguments = p.parseExpressionList(token.RPAREN)
	return expr
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	expr := &ast.IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return expr
}

func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	expr := &ast.MemberExpression{Token: p.curToken, Object: object}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr.Member = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return expr
}

func (p *Parser) parseListLiteral() ast.Expression {
	lit := &ast.ListLiteral{Token: p.curToken}
	lit.Elements = p.parseExpressionList(token.RBRACKET)
	return lit
}

// parseRecordLiteral parses { key: value, ... }. Keys are identifiers
// or strings; written order is preserved.
func (p *Parser) parseRecordLiteral() ast.Expression {
	lit := &ast.RecordLiteral{Token: p.curToken}

	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return lit
	}

	for {
		p.nextToken()
		var key string
		switch p.curToken.Type {
		case token.IDENT, token.STRING:
			key = p.curToken.Literal
		default:
			p.errorAt(p.curToken, "expected record key, got %s", p.curToken.Type)
			return nil
		}

		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		lit.Fields = append(lit.Fields, ast.RecordField{Key: key, Value: value})

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return lit
}

func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}
