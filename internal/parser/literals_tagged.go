package parser

import (
	"strconv"
	"strings"

	"github.com/solifugus/mbl/internal/ast"
)

// parseTaggedLiteral dispatches a @"..." literal to its canonical
// form: money when the content starts with '$', a date-time when it
// has both a date and a time part, otherwise a date or a time.
func (p *Parser) parseTaggedLiteral() ast.Expression {
	content := p.curToken.Literal

	if strings.HasPrefix(content, "$") {
		return p.parseMoneyContent(content[1:])
	}

	var datePart, timePart string
	switch {
	case strings.ContainsRune(content, 'T'):
		parts := strings.SplitN(content, "T", 2)
		datePart, timePart = parts[0], parts[1]
	case strings.ContainsRune(content, ' '):
		parts := strings.SplitN(content, " ", 2)
		datePart, timePart = parts[0], parts[1]
	case strings.ContainsRune(content, ':'):
		timePart = content
	default:
		datePart = content
	}

	switch {
	case datePart != "" && timePart != "":
		year, month, day, ok := p.parseDateContent(datePart)
		if !ok {
			return nil
		}
		hour, minute, second, milli, ok := p.parseTimeContent(timePart)
		if !ok {
			return nil
		}
		return &ast.DateTimeLiteral{
			Token: p.curToken,
			Year:  year, Month: month, Day: day,
			Hour: hour, Minute: minute, Second: second, Milli: milli,
		}
	case timePart != "":
		hour, minute, second, milli, ok := p.parseTimeContent(timePart)
		if !ok {
			return nil
		}
		return &ast.TimeLiteral{Token: p.curToken, Hour: hour, Minute: minute, Second: second, Milli: milli}
	default:
		year, month, day, ok := p.parseDateContent(datePart)
		if !ok {
			return nil
		}
		return &ast.DateLiteral{Token: p.curToken, Year: year, Month: month, Day: day}
	}
}

// parseMoneyContent parses "[-]D.CC" into sub-units (10,000 per whole
// unit). Fractional digits beyond two are truncated toward zero. The
// literal form has no currency; the runtime applies its default.
func (p *Parser) parseMoneyContent(content string) ast.Expression {
	negative := strings.HasPrefix(content, "-")
	if negative {
		content = content[1:]
	}

	wholePart := content
	fracPart := ""
	if i := strings.IndexByte(content, '.'); i >= 0 {
		wholePart, fracPart = content[:i], content[i+1:]
	}
	if wholePart == "" || !allDigits(wholePart) || (fracPart != "" && !allDigits(fracPart)) {
		p.errorAt(p.curToken, "malformed money literal %q", p.curToken.Lexeme)
		return nil
	}

	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil {
		p.errorAt(p.curToken, "money literal out of range: %q", p.curToken.Lexeme)
		return nil
	}

	if len(fracPart) > 2 {
		fracPart = fracPart[:2]
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	cents, _ := strconv.ParseInt(fracPart, 10, 64)

	amount := whole*10000 + cents*100
	if negative {
		amount = -amount
	}
	return &ast.MoneyLiteral{Token: p.curToken, Amount: amount}
}

func (p *Parser) parseDateContent(content string) (year, month, day int, ok bool) {
	negativeYear := strings.HasPrefix(content, "-")
	if negativeYear {
		content = content[1:]
	}
	parts := strings.Split(content, "-")
	if len(parts) != 3 || !allDigits(parts[0]) || !allDigits(parts[1]) || !allDigits(parts[2]) {
		p.errorAt(p.curToken, "malformed date literal %q", p.curToken.Lexeme)
		return 0, 0, 0, false
	}
	year, _ = strconv.Atoi(parts[0])
	month, _ = strconv.Atoi(parts[1])
	day, _ = strconv.Atoi(parts[2])
	if negativeYear {
		year = -year
	}
	if month < 1 || month > 12 || day < 1 || day > daysInMonth(year, month) {
		p.errorAt(p.curToken, "invalid calendar date %q", p.curToken.Lexeme)
		return 0, 0, 0, false
	}
	return year, month, day, true
}

func (p *Parser) parseTimeContent(content string) (hour, minute, second, milli int, ok bool) {
	main := content
	if i := strings.IndexByte(content, '.'); i >= 0 {
		main = content[:i]
		frac := content[i+1:]
		if len(frac) != 3 || !allDigits(frac) {
			p.errorAt(p.curToken, "malformed time literal %q", p.curToken.Lexeme)
			return 0, 0, 0, 0, false
		}
		milli, _ = strconv.Atoi(frac)
	}
	parts := strings.Split(main, ":")
	if len(parts) != 3 || !allDigits(parts[0]) || !allDigits(parts[1]) || !allDigits(parts[2]) {
		p.errorAt(p.curToken, "malformed time literal %q", p.curToken.Lexeme)
		return 0, 0, 0, 0, false
	}
	hour, _ = strconv.Atoi(parts[0])
	minute, _ = strconv.Atoi(parts[1])
	second, _ = strconv.Atoi(parts[2])
	if hour > 23 || minute > 59 || second > 59 {
		p.errorAt(p.curToken, "invalid clock time %q", p.curToken.Lexeme)
		return 0, 0, 0, 0, false
	}
	return hour, minute, second, milli, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// daysInMonth applies the Gregorian leap rule: divisible by 4 and not
// by 100, or divisible by 400.
func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	}
	return 0
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}
