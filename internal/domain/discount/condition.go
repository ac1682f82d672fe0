package discount

// FieldType is the declared type of a filterable product attribute
type FieldType string

const (
	FieldTypeString     FieldType = "string"
	FieldTypeNumber     FieldType = "number"
	FieldTypeBoolean    FieldType = "boolean"
	FieldTypeCollection FieldType = "collection"
)

// Operator is a comparison applied to a single filter condition
type Operator string

const (
	OperatorEquals         Operator = "equals"
	OperatorNotEquals      Operator = "not_equals"
	OperatorContains       Operator = "contains"
	OperatorNotContains    Operator = "not_contains"
	OperatorIn             Operator = "in"
	OperatorNotIn          Operator = "not_in"
	OperatorIsNull         Operator = "is_null"
	OperatorIsNotNull      Operator = "is_not_null"
	OperatorGreaterThan    Operator = "greater_than"
	OperatorGreaterOrEqual Operator = "greater_or_equal"
	OperatorLessThan       Operator = "less_than"
	OperatorLessOrEqual    Operator = "less_or_equal"
	OperatorBetween        Operator = "between"
	OperatorContainsAny    Operator = "contains_any"
	OperatorContainsAll    Operator = "contains_all"
	OperatorIsSuperset     Operator = "is_superset"
	OperatorIsSubset       Operator = "is_subset"
	OperatorOverlaps       Operator = "overlaps"
	OperatorIsEmpty        Operator = "is_empty"
	OperatorIsNotEmpty     Operator = "is_not_empty"
)

// LogicalOperator joins a condition to the accumulated result of the
// conditions before it. It is ignored on the first condition in a list.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "and"
	LogicalOr  LogicalOperator = "or"
)

// legalOperators is the closed {field type x operator} pairing. An operator
// outside its field type's set is rejected at compile time instead of being
// silently coerced to an equality check.
var legalOperators = map[FieldType]map[Operator]bool{
	FieldTypeString: {
		OperatorEquals:      true,
		OperatorNotEquals:   true,
		OperatorContains:    true,
		OperatorNotContains: true,
		OperatorIn:          true,
		OperatorNotIn:       true,
		OperatorIsNull:      true,
		OperatorIsNotNull:   true,
	},
	FieldTypeNumber: {
		OperatorEquals:         true,
		OperatorNotEquals:      true,
		OperatorGreaterThan:    true,
		OperatorGreaterOrEqual: true,
		OperatorLessThan:       true,
		OperatorLessOrEqual:    true,
		OperatorBetween:        true,
		OperatorIn:             true,
		OperatorNotIn:          true,
	},
	FieldTypeBoolean: {
		OperatorEquals:    true,
		OperatorNotEquals: true,
	},
	FieldTypeCollection: {
		OperatorContainsAny: true,
		OperatorContainsAll: true,
		OperatorIsSuperset:  true,
		OperatorIsSubset:    true,
		OperatorOverlaps:    true,
		OperatorIsEmpty:     true,
		OperatorIsNotEmpty:  true,
	},
}

// Allows returns true if the operator is legal for the field type
func (t FieldType) Allows(op Operator) bool {
	return legalOperators[t][op]
}

// Field describes a filterable product attribute and its declared type
type Field struct {
	Name string
	Type FieldType
}

// Condition is one user-supplied filter condition. Conditions are
// ephemeral: they narrow a single apply operation and are never persisted.
type Condition struct {
	ID       string          `json:"id,omitempty"`
	Field    string          `json:"field"`
	Operator Operator        `json:"operator"`
	Value    any             `json:"value,omitempty"`
	Logical  LogicalOperator `json:"logical_operator,omitempty"`
}

// FieldRegistry declares the attributes a filter may reference
type FieldRegistry struct {
	fields map[string]Field
}

// NewFieldRegistry creates a registry from the given fields
func NewFieldRegistry(fields ...Field) *FieldRegistry {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return &FieldRegistry{fields: m}
}

// Lookup returns the field declaration for a name
func (r *FieldRegistry) Lookup(name string) (Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// ProductFieldRegistry returns the product attributes exposed to ad-hoc
// discount filters
func ProductFieldRegistry() *FieldRegistry {
	return NewFieldRegistry(
		Field{Name: "code", Type: FieldTypeString},
		Field{Name: "name", Type: FieldTypeString},
		Field{Name: "description", Type: FieldTypeString},
		Field{Name: "status", Type: FieldTypeString},
		Field{Name: "image_url", Type: FieldTypeString},
		Field{Name: "price", Type: FieldTypeNumber},
		Field{Name: "discount_percentage", Type: FieldTypeNumber},
		Field{Name: "sort_order", Type: FieldTypeNumber},
		Field{Name: "is_active", Type: FieldTypeBoolean},
		Field{Name: "categories", Type: FieldTypeCollection},
		Field{Name: "subcategories", Type: FieldTypeCollection},
	)
}
