// Package pattern assigns category hints to imported transactions from
// user-defined description rules.
package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/shopspring/decimal"
)

// AmountCondition restricts a rule to some amounts.
type AmountCondition string

// Amount conditions. An empty condition behaves like AmountAny.
const (
	AmountAny   AmountCondition = "any"
	AmountLT    AmountCondition = "lt"
	AmountLE    AmountCondition = "le"
	AmountEQ    AmountCondition = "eq"
	AmountGE    AmountCondition = "ge"
	AmountGT    AmountCondition = "gt"
	AmountRange AmountCondition = "range"
)

// Rule maps matching descriptions to a category. Pattern is a
// case-insensitive substring unless Regex is set.
type Rule struct {
	Pattern  string          `mapstructure:"pattern" validate:"required"`
	Category string          `mapstructure:"category" validate:"required"`
	Type     string          `mapstructure:"type" validate:"omitempty,oneof=Income Expense income expense"`
	Amount   AmountCondition `mapstructure:"amount" validate:"omitempty,oneof=any lt le eq ge gt range"`
	Value    string          `mapstructure:"value"`
	Min      string          `mapstructure:"min"`
	Max      string          `mapstructure:"max"`
	Regex    bool            `mapstructure:"regex"`
	Priority int             `mapstructure:"priority"`
}

type compiledRule struct {
	re           *regexp.Regexp
	value        decimal.Decimal
	min          *decimal.Decimal
	max          *decimal.Decimal
	needle       string
	categoryType model.CategoryType
	Rule
}

// Matcher evaluates imported rows against rules, highest priority first.
// Rules of equal priority keep their configured order.
type Matcher struct {
	rules []compiledRule
}

// NewMatcher compiles rules. Invalid patterns or amounts are reported
// rather than skipped.
func NewMatcher(rules []Rule) (*Matcher, error) {
	m := &Matcher{rules: make([]compiledRule, 0, len(rules))}

	for i, rule := range rules {
		c, err := compile(rule)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d (%q): %w", common.ErrInvalidConfig, i+1, rule.Pattern, err)
		}
		m.rules = append(m.rules, c)
	}

	sort.SliceStable(m.rules, func(i, j int) bool {
		return m.rules[i].Priority > m.rules[j].Priority
	})
	return m, nil
}

func compile(rule Rule) (compiledRule, error) {
	c := compiledRule{Rule: rule}

	if strings.TrimSpace(rule.Pattern) == "" {
		return c, fmt.Errorf("pattern is required")
	}
	if strings.TrimSpace(rule.Category) == "" {
		return c, fmt.Errorf("category is required")
	}
	c.Category = strings.TrimSpace(rule.Category)

	if rule.Type != "" {
		t, ok := model.ParseCategoryType(rule.Type)
		if !ok {
			return c, fmt.Errorf("type %q must be Income or Expense", rule.Type)
		}
		c.categoryType = t
	}

	if rule.Regex {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return c, err
		}
		c.re = re
	} else {
		c.needle = strings.ToLower(rule.Pattern)
	}

	parse := func(name, s string) (*decimal.Decimal, error) {
		if s == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%s %q is not a number", name, s)
		}
		return &d, nil
	}

	switch rule.Amount {
	case "", AmountAny:
		c.Amount = AmountAny
	case AmountLT, AmountLE, AmountEQ, AmountGE, AmountGT:
		v, err := parse("value", rule.Value)
		if err != nil {
			return c, err
		}
		if v == nil {
			return c, fmt.Errorf("amount condition %q needs a value", rule.Amount)
		}
		c.value = *v
	case AmountRange:
		var err error
		if c.min, err = parse("min", rule.Min); err != nil {
			return c, err
		}
		if c.max, err = parse("max", rule.Max); err != nil {
			return c, err
		}
		if c.min == nil && c.max == nil {
			return c, fmt.Errorf("range needs min or max")
		}
	default:
		return c, fmt.Errorf("unknown amount condition %q", rule.Amount)
	}

	return c, nil
}

// Len returns the number of rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// Match returns the first rule, by priority, that matches txn.
func (m *Matcher) Match(txn model.ImportedTransaction) (Rule, bool) {
	for _, r := range m.rules {
		if r.matches(txn) {
			return r.Rule, true
		}
	}
	return Rule{}, false
}

// Apply sets the category hint of every matching row and returns how many
// rows matched. Rows that match nothing keep their source hint.
func (m *Matcher) Apply(rows []model.ImportedTransaction) int {
	matched := 0
	for i := range rows {
		if r, ok := m.Match(rows[i]); ok {
			rows[i].CategoryHint = r.Category
			matched++
		}
	}
	return matched
}

func (r compiledRule) matches(txn model.ImportedTransaction) bool {
	if r.categoryType != "" && txn.Type != r.categoryType {
		return false
	}
	if !r.matchesDescription(txn.Description) {
		return false
	}
	return r.matchesAmount(txn.Amount)
}

func (r compiledRule) matchesDescription(desc string) bool {
	if r.re != nil {
		return r.re.MatchString(desc)
	}
	return strings.Contains(strings.ToLower(desc), r.needle)
}

func (r compiledRule) matchesAmount(amount decimal.Decimal) bool {
	switch r.Amount {
	case AmountLT:
		return amount.LessThan(r.value)
	case AmountLE:
		return amount.LessThanOrEqual(r.value)
	case AmountEQ:
		return amount.Equal(r.value)
	case AmountGE:
		return amount.GreaterThanOrEqual(r.value)
	case AmountGT:
		return amount.GreaterThan(r.value)
	case AmountRange:
		if r.min != nil && amount.LessThan(*r.min) {
			return false
		}
		if r.max != nil && amount.GreaterThan(*r.max) {
			return false
		}
		return true
	}
	return true
}
