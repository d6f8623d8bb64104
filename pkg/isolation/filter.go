package isolation

// TenantField is the canonical predicate field for tenant ownership.
const TenantField = "tenant_id"

// Op is a predicate comparison operator. The set is deliberately small:
// anything requiring wall-clock comparison or derived booleans is
// evaluated in application code after the fetch, never pushed into the
// store.
type Op string

const (
	OpEq Op = "eq"
	OpIn Op = "in"
)

// Filter is a single stored-field predicate.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq matches rows whose field equals v.
func Eq(field string, v any) Filter {
	return Filter{Field: field, Op: OpEq, Value: v}
}

// In matches rows whose field equals any of vs.
func In(field string, vs ...any) Filter {
	return Filter{Field: field, Op: OpIn, Value: vs}
}
