package filter

import "time"

// Predicate is an immutable conjunction of clauses. The visibility clause is
// always present and cannot be removed.
type Predicate struct {
	clauses []Clause
}

// NewPredicate creates a predicate over visible listings at now.
func NewPredicate(now time.Time, clauses ...Clause) Predicate {
	all := make([]Clause, 0, len(clauses)+1)
	all = append(all, Visible(now))
	for _, c := range clauses {
		if c.dim == DimBase {
			continue
		}
		all = append(all, c)
	}
	return Predicate{clauses: all}
}

// Clauses returns a copy of the clauses, base clause first.
func (p Predicate) Clauses() []Clause {
	out := make([]Clause, len(p.clauses))
	copy(out, p.clauses)
	return out
}

// Now returns the visibility cutoff.
func (p Predicate) Now() time.Time {
	for _, c := range p.clauses {
		if c.kind == KindVisible {
			return c.now
		}
	}
	return time.Time{}
}

// And returns a new predicate with c appended.
func (p Predicate) And(c Clause) Predicate {
	if c.dim == DimBase {
		return p
	}
	out := make([]Clause, len(p.clauses), len(p.clauses)+1)
	copy(out, p.clauses)
	return Predicate{clauses: append(out, c)}
}

// Without returns a new predicate with every clause of dimension d removed.
// The base dimension is never removed.
func (p Predicate) Without(d Dimension) Predicate {
	if d == DimBase {
		return p
	}
	out := make([]Clause, 0, len(p.clauses))
	for _, c := range p.clauses {
		if c.dim != d {
			out = append(out, c)
		}
	}
	return Predicate{clauses: out}
}

// Has reports whether the predicate constrains dimension d.
func (p Predicate) Has(d Dimension) bool {
	for _, c := range p.clauses {
		if c.dim == d {
			return true
		}
	}
	return false
}

// Of returns the clauses of dimension d.
func (p Predicate) Of(d Dimension) []Clause {
	var out []Clause
	for _, c := range p.clauses {
		if c.dim == d {
			out = append(out, c)
		}
	}
	return out
}
