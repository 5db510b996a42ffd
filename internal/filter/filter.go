package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"logdam/internal/model"
)

// Criteria narrow which report rows are shown. They never change the
// report itself.
type Criteria struct {
	Query    string // plain contains, or regex if /.../
	UseRegex bool
	Expr     string // govaluate expression over c0..cN, key, fields
	Column   int    // when >= 0, apply Query only to this column
}

var reColumnScope = regexp.MustCompile(`^c(\d+):(.*)$`)

// ParseQuery turns user input into Criteria. "/re/" selects regex matching,
// "expr:" prefixes an expression and "cN:" scopes a text or regex query to
// column N.
func ParseQuery(s string) Criteria {
	c := Criteria{Column: -1}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "expr:") {
		c.Expr = strings.TrimSpace(strings.TrimPrefix(s, "expr:"))
		return c
	}
	if m := reColumnScope.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			c.Column = n
			s = strings.TrimSpace(m[2])
		}
	}
	switch {
	case len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/"):
		c.Query = s[1 : len(s)-1]
		c.UseRegex = true
	default:
		c.Query = s
	}
	return c
}

// Empty reports whether the criteria match everything.
func (c Criteria) Empty() bool {
	return c.Query == "" && strings.TrimSpace(c.Expr) == ""
}

type Evaluator struct {
	c    Criteria
	re   *regexp.Regexp
	expr *govaluate.EvaluableExpression
}

func NewEvaluator(c Criteria) (*Evaluator, error) {
	e := &Evaluator{c: c}
	var err error
	if c.UseRegex && c.Query != "" {
		e.re, err = regexp.Compile(c.Query)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
	}
	if strings.TrimSpace(c.Expr) != "" {
		e.expr, err = govaluate.NewEvaluableExpression(c.Expr)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
	}
	return e, nil
}

func (e *Evaluator) Criteria() Criteria { return e.c }

// String renders the criteria back in ParseQuery syntax.
func (c Criteria) String() string {
	if c.Expr != "" {
		return "expr: " + c.Expr
	}
	q := c.Query
	if c.UseRegex {
		q = "/" + q + "/"
	}
	if c.Column >= 0 {
		return fmt.Sprintf("c%d:%s", c.Column, q)
	}
	return q
}

// Match reports whether row, stored under key, passes the criteria.
func (e *Evaluator) Match(row model.Row, key string) bool {
	if e == nil {
		return true
	}
	if e.c.Query != "" && !e.matchQuery(row) {
		return false
	}
	if e.expr != nil {
		result, err := e.expr.Evaluate(e.params(row, key))
		if err != nil {
			return false
		}
		b, ok := result.(bool)
		if !ok || !b {
			return false
		}
	}
	return true
}

func (e *Evaluator) matchQuery(row model.Row) bool {
	var text string
	if e.c.Column >= 0 {
		if e.c.Column < len(row) {
			text = row[e.c.Column]
		}
	} else {
		text = strings.Join(row, "\t")
	}
	if e.re != nil {
		return e.re.MatchString(text)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(e.c.Query))
}

// params exposes cells as c0..cN. Numeric cells become float64 so
// comparisons work; columns the row lacks evaluate as "".
func (e *Evaluator) params(row model.Row, key string) map[string]any {
	params := map[string]any{
		"key":    key,
		"fields": float64(len(row)),
	}
	for i, v := range row {
		params["c"+strconv.Itoa(i)] = cellValue(v)
	}
	for _, name := range e.expr.Vars() {
		if _, ok := params[name]; !ok {
			params[name] = ""
		}
	}
	return params
}

func cellValue(s string) any {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return s
}
