package docstore

// Op is a filter operator.
type Op int

const (
	// OpEq matches documents whose field equals the value.
	OpEq Op = iota
	// OpIn matches documents whose field equals any of the values. An empty list matches nothing.
	OpIn
	// OpMissing matches documents where the field is absent, null or the empty string.
	OpMissing
	// OpExists matches documents where the field is present and not null.
	OpExists
)

// Condition is one clause of a filter. All clauses of a Filter must hold.
type Condition struct {
	Field  string
	Op     Op
	Values []any
}

// Filter is a conjunction of conditions. The zero value matches every document.
// Builder methods return a new Filter and never modify the receiver.
type Filter struct {
	conds []Condition
}

// All matches every document.
func All() Filter {
	return Filter{}
}

func (f Filter) with(c Condition) Filter {
	conds := make([]Condition, len(f.conds), len(f.conds)+1)
	copy(conds, f.conds)
	return Filter{conds: append(conds, c)}
}

// Eq adds field == value.
func (f Filter) Eq(field string, value any) Filter {
	return f.with(Condition{Field: field, Op: OpEq, Values: []any{value}})
}

// In adds field ∈ values.
func (f Filter) In(field string, values ...any) Filter {
	return f.with(Condition{Field: field, Op: OpIn, Values: values})
}

// InInts adds field ∈ ids.
func (f Filter) InInts(field string, ids []int) Filter {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return f.In(field, values...)
}

// InStrings adds field ∈ values.
func (f Filter) InStrings(field string, strs []string) Filter {
	values := make([]any, len(strs))
	for i, s := range strs {
		values[i] = s
	}
	return f.In(field, values...)
}

// Missing adds "field is absent, null or empty".
func (f Filter) Missing(field string) Filter {
	return f.with(Condition{Field: field, Op: OpMissing})
}

// Exists adds "field is present and not null".
func (f Filter) Exists(field string) Filter {
	return f.with(Condition{Field: field, Op: OpExists})
}

// Conditions returns the clauses in the order they were added.
func (f Filter) Conditions() []Condition {
	return f.conds
}

// IsEmpty reports whether the filter matches every document.
func (f Filter) IsEmpty() bool {
	return len(f.conds) == 0
}

func (f Filter) validate() error {
	for _, c := range f.conds {
		if err := ValidateFieldName(c.Field); err != nil {
			return err
		}
	}
	return nil
}

// seed returns the equality fields used to initialise an upserted document.
func (f Filter) seed() Document {
	doc := Document{}
	for _, c := range f.conds {
		if c.Op == OpEq {
			doc[c.Field] = c.Values[0]
		}
	}
	return doc
}
