package runtime

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Inspect renders a value in its literal form. Money displays at
// two-decimal precision (display precision is independent of the
// stored sub-unit scale).
func (s *Store) Inspect(h Handle) string {
	if h == NoHandle {
		return "nil"
	}
	c := &s.cells[h]
	switch c.kind {
	case KindNumber:
		return strconv.FormatFloat(c.num, 'g', -1, 64)
	case KindText:
		return c.text
	case KindMoney:
		return formatMoney(c.amount, c.currency)
	case KindTime:
		if c.time.Milli > 0 {
			return fmt.Sprintf("@\"%02d:%02d:%02d.%03d\"", c.time.Hour, c.time.Minute, c.time.Second, c.time.Milli)
		}
		return fmt.Sprintf("@\"%02d:%02d:%02d\"", c.time.Hour, c.time.Minute, c.time.Second)
	case KindDate:
		return fmt.Sprintf("@\"%04d-%02d-%02d\"", c.date.Year, c.date.Month, c.date.Day)
	case KindDateTime:
		if c.time.Milli > 0 {
			return fmt.Sprintf("@\"%04d-%02d-%02d %02d:%02d:%02d.%03d\"",
				c.date.Year, c.date.Month, c.date.Day, c.time.Hour, c.time.Minute, c.time.Second, c.time.Milli)
		}
		return fmt.Sprintf("@\"%04d-%02d-%02d %02d:%02d:%02d\"",
			c.date.Year, c.date.Month, c.date.Day, c.time.Hour, c.time.Minute, c.time.Second)
	case KindPercentage:
		return strconv.FormatFloat(c.num, 'g', -1, 64) + "%"
	case KindRatio:
		return fmt.Sprintf("%s:%s",
			strconv.FormatFloat(c.num, 'g', -1, 64),
			strconv.FormatFloat(c.den, 'g', -1, 64))
	case KindBoolean:
		return strconv.FormatBool(c.boolean)
	case KindUnknown:
		return "unknown"
	case KindNil:
		return "nil"
	case KindList:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, el := range c.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(s.inspectQuoted(el))
		}
		sb.WriteByte(']')
		return sb.String()
	case KindRecord:
		keys := make([]string, 0, len(c.fields))
		for k := range c.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(": ")
			sb.WriteString(s.inspectQuoted(c.fields[k]))
		}
		sb.WriteByte('}')
		return sb.String()
	case KindFunction:
		return fmt.Sprintf("function %s/%d", c.fn.Name, len(c.fn.Parameters))
	case KindBuiltin:
		return "builtin " + c.builtin.Name
	case KindTrigger:
		return fmt.Sprintf("trigger %s (%s)", c.trigger.Name, c.trigger.Event)
	case KindConstraint:
		return "constraint " + c.constraint.Name
	}
	return "<invalid>"
}

// inspectQuoted is Inspect with text quoted, for container elements.
func (s *Store) inspectQuoted(h Handle) string {
	if s.Kind(h) == KindText {
		return strconv.Quote(s.Text(h))
	}
	return s.Inspect(h)
}

func formatMoney(amount int64, currency string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	whole := amount / MoneyScale
	cents := (amount % MoneyScale) / 100
	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("@\"$%s%d.%02d\" %s", sign, whole, cents, currency)
}
