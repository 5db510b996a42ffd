package filter

import (
	"testing"

	"logdam/internal/model"
)

func TestParseQuery(t *testing.T) {
	if c := ParseQuery("/^GET/"); !c.UseRegex || c.Query != "^GET" {
		t.Fatalf("regex query %+v", c)
	}
	if c := ParseQuery("expr: c8 >= 500"); c.Expr != "c8 >= 500" || c.Query != "" {
		t.Fatalf("expr query %+v", c)
	}
	if c := ParseQuery("  sshd "); c.Query != "sshd" || c.UseRegex || c.Column != -1 {
		t.Fatalf("plain query %+v", c)
	}
	if !ParseQuery("").Empty() {
		t.Fatalf("blank query should be empty")
	}
	if c := ParseQuery("c2: alice"); c.Column != 2 || c.Query != "alice" || c.UseRegex {
		t.Fatalf("column query %+v", c)
	}
	if c := ParseQuery("c8:/^5/"); c.Column != 8 || c.Query != "^5" || !c.UseRegex {
		t.Fatalf("column regex %+v", c)
	}
}

func TestCriteriaStringRoundTrip(t *testing.T) {
	for _, q := range []string{"sshd", "/^GET/", "expr: c8 >= 500", "c2:alice", "c8:/^5/"} {
		if got := ParseQuery(q).String(); got != q {
			t.Errorf("ParseQuery(%q).String()=%q", q, got)
		}
	}
}

func TestColumnScopedQuery(t *testing.T) {
	e, err := NewEvaluator(ParseQuery("c1:/^5\\d\\d$/"))
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Criteria().Column; got != 1 {
		t.Fatalf("column %d", got)
	}
	if !e.Match(model.Row{"api", "503"}, "api") {
		t.Fatalf("503 in c1 should match")
	}
	if e.Match(model.Row{"503", "200"}, "503") {
		t.Fatalf("503 outside c1 should not match")
	}
}

func TestMatch(t *testing.T) {
	row := model.Row{"10.0.0.1", "-", "alice", "[06/Oct/2024:23:39:01 +0000]", `"GET`, "/health", `HTTP/1.1"`, "", "503", "12"}
	cases := []struct {
		name string
		c    Criteria
		key  string
		want bool
	}{
		{"contains case-insensitive", Criteria{Query: "ALICE", Column: -1}, "", true},
		{"contains miss", Criteria{Query: "bob", Column: -1}, "", false},
		{"regex", Criteria{Query: `^10\.0\.`, UseRegex: true, Column: 0}, "", true},
		{"column scoped miss", Criteria{Query: "alice", Column: 0}, "", false},
		{"column out of range", Criteria{Query: "x", Column: 40}, "", false},
		{"numeric expr", Criteria{Expr: "c8 >= 500", Column: -1}, "", true},
		{"key expr", Criteria{Expr: `key == "/health"`, Column: -1}, "/health", true},
		{"fields expr", Criteria{Expr: "fields > 20", Column: -1}, "", false},
		{"missing column is empty", Criteria{Expr: `c50 == ""`, Column: -1}, "", true},
		{"non-bool expr", Criteria{Expr: "c9 + 1", Column: -1}, "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := NewEvaluator(c.c)
			if err != nil {
				t.Fatal(err)
			}
			if got := e.Match(row, c.key); got != c.want {
				t.Fatalf("Match=%v want %v", got, c.want)
			}
		})
	}
}

func TestNewEvaluatorErrors(t *testing.T) {
	if _, err := NewEvaluator(Criteria{Query: "(", UseRegex: true}); err == nil {
		t.Fatalf("expected regex error")
	}
	if _, err := NewEvaluator(Criteria{Expr: "c0 =="}); err == nil {
		t.Fatalf("expected expression error")
	}
	var e *Evaluator
	if !e.Match(model.Row{"x"}, "") {
		t.Fatalf("nil evaluator should match everything")
	}
}
