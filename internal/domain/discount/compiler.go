package discount

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// Predicate is a boolean function over product attributes selecting a
// target subset
type Predicate func(p *catalog.Product) bool

// CompiledFilter is the result of compiling a condition list: an
// executable predicate plus a human-readable preview shown to the operator
// before a destructive bulk apply.
type CompiledFilter struct {
	Predicate Predicate
	Preview   string
}

// Compiler translates an ordered condition list into a predicate.
//
// The whole list is validated before any predicate is built, so an illegal
// {field type x operator} pairing or an uncoercible value is reported
// before any mutation runs. Conditions combine strictly left-
// associatively: (((c0) op1 c1) op2 c2) ... with no parenthesization.
type Compiler struct {
	registry *FieldRegistry
}

// NewCompiler creates a compiler over the given field registry
func NewCompiler(registry *FieldRegistry) *Compiler {
	return &Compiler{registry: registry}
}

// NewProductCompiler creates a compiler over the default product fields
func NewProductCompiler() *Compiler {
	return NewCompiler(ProductFieldRegistry())
}

// compiledCondition is one validated condition with its coerced value
type compiledCondition struct {
	field   Field
	op      Operator
	eval    Predicate
	logical LogicalOperator
	preview string
}

// Compile validates and compiles the condition list. An empty list yields
// the always-true predicate.
func (c *Compiler) Compile(conditions []Condition) (*CompiledFilter, error) {
	if len(conditions) == 0 {
		return &CompiledFilter{
			Predicate: func(*catalog.Product) bool { return true },
			Preview:   "all products",
		}, nil
	}

	compiled := make([]compiledCondition, 0, len(conditions))
	for i, cond := range conditions {
		cc, err := c.compileCondition(i, cond)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cc)
	}

	predicate := func(p *catalog.Product) bool {
		result := compiled[0].eval(p)
		for _, cc := range compiled[1:] {
			if cc.logical == LogicalOr {
				result = result || cc.eval(p)
			} else {
				result = result && cc.eval(p)
			}
		}
		return result
	}

	preview := "(" + compiled[0].preview + ")"
	for _, cc := range compiled[1:] {
		connector := "AND"
		if cc.logical == LogicalOr {
			connector = "OR"
		}
		preview = "(" + preview + " " + connector + " (" + cc.preview + "))"
	}

	return &CompiledFilter{Predicate: predicate, Preview: preview}, nil
}

// compileCondition validates a single condition and builds its evaluator
func (c *Compiler) compileCondition(index int, cond Condition) (compiledCondition, error) {
	field, ok := c.registry.Lookup(cond.Field)
	if !ok {
		return compiledCondition{}, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Unknown filter field %q", cond.Field))
	}
	if !field.Type.Allows(cond.Operator) {
		return compiledCondition{}, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Operator %q is not legal for %s field %q", cond.Operator, field.Type, field.Name))
	}
	if index > 0 && cond.Logical != "" && cond.Logical != LogicalAnd && cond.Logical != LogicalOr {
		return compiledCondition{}, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Unknown logical operator %q", cond.Logical))
	}

	var (
		eval    Predicate
		preview string
		err     error
	)

	switch field.Type {
	case FieldTypeString:
		eval, preview, err = compileStringCondition(field, cond)
	case FieldTypeNumber:
		eval, preview, err = compileNumberCondition(field, cond)
	case FieldTypeBoolean:
		eval, preview, err = compileBooleanCondition(field, cond)
	case FieldTypeCollection:
		eval, preview, err = compileCollectionCondition(field, cond)
	}
	if err != nil {
		return compiledCondition{}, err
	}

	logical := cond.Logical
	if logical == "" {
		logical = LogicalAnd
	}

	return compiledCondition{
		field:   field,
		op:      cond.Operator,
		eval:    eval,
		logical: logical,
		preview: preview,
	}, nil
}

// compileStringCondition builds the evaluator for a string-typed field.
// Comparisons are case-insensitive.
func compileStringCondition(field Field, cond Condition) (Predicate, string, error) {
	name := field.Name

	switch cond.Operator {
	case OperatorIsNull:
		return func(p *catalog.Product) bool {
			return stringFieldValue(p, name) == ""
		}, name + " is null", nil
	case OperatorIsNotNull:
		return func(p *catalog.Product) bool {
			return stringFieldValue(p, name) != ""
		}, name + " is not null", nil
	case OperatorIn, OperatorNotIn:
		values, err := coerceStringList(field, cond.Value)
		if err != nil {
			return nil, "", err
		}
		want := cond.Operator == OperatorIn
		return func(p *catalog.Product) bool {
			return containsFold(values, stringFieldValue(p, name)) == want
		}, fmt.Sprintf("%s %s [%s]", name, strings.ReplaceAll(string(cond.Operator), "_", " "), strings.Join(values, ", ")), nil
	default:
		value, err := coerceString(field, cond.Value)
		if err != nil {
			return nil, "", err
		}
		switch cond.Operator {
		case OperatorEquals:
			return func(p *catalog.Product) bool {
				return strings.EqualFold(stringFieldValue(p, name), value)
			}, fmt.Sprintf("%s = %q", name, value), nil
		case OperatorNotEquals:
			return func(p *catalog.Product) bool {
				return !strings.EqualFold(stringFieldValue(p, name), value)
			}, fmt.Sprintf("%s != %q", name, value), nil
		case OperatorContains:
			return func(p *catalog.Product) bool {
				return strings.Contains(strings.ToLower(stringFieldValue(p, name)), strings.ToLower(value))
			}, fmt.Sprintf("%s contains %q", name, value), nil
		case OperatorNotContains:
			return func(p *catalog.Product) bool {
				return !strings.Contains(strings.ToLower(stringFieldValue(p, name)), strings.ToLower(value))
			}, fmt.Sprintf("%s not contains %q", name, value), nil
		}
	}

	// Unreachable: the operator table is checked before dispatch
	return nil, "", shared.NewDomainError("VALIDATION_ERROR", "Unsupported string operator")
}

// compileNumberCondition builds the evaluator for a number-typed field
func compileNumberCondition(field Field, cond Condition) (Predicate, string, error) {
	name := field.Name

	switch cond.Operator {
	case OperatorBetween:
		bounds, err := coerceNumberList(field, cond.Value)
		if err != nil {
			return nil, "", err
		}
		if len(bounds) != 2 {
			return nil, "", shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Operator %q on field %q requires exactly two values", OperatorBetween, name))
		}
		lo, hi := bounds[0], bounds[1]
		return func(p *catalog.Product) bool {
			v := numberFieldValue(p, name)
			return v >= lo && v <= hi
		}, fmt.Sprintf("%s between %s and %s", name, formatNumber(lo), formatNumber(hi)), nil
	case OperatorIn, OperatorNotIn:
		values, err := coerceNumberList(field, cond.Value)
		if err != nil {
			return nil, "", err
		}
		want := cond.Operator == OperatorIn
		return func(p *catalog.Product) bool {
			v := numberFieldValue(p, name)
			for _, candidate := range values {
				if v == candidate {
					return want
				}
			}
			return !want
		}, fmt.Sprintf("%s %s [%s]", name, strings.ReplaceAll(string(cond.Operator), "_", " "), formatNumbers(values)), nil
	default:
		value, err := coerceNumber(field, cond.Value)
		if err != nil {
			return nil, "", err
		}
		symbols := map[Operator]string{
			OperatorEquals:         "=",
			OperatorNotEquals:      "!=",
			OperatorGreaterThan:    ">",
			OperatorGreaterOrEqual: ">=",
			OperatorLessThan:       "<",
			OperatorLessOrEqual:    "<=",
		}
		preview := fmt.Sprintf("%s %s %s", name, symbols[cond.Operator], formatNumber(value))
		op := cond.Operator
		return func(p *catalog.Product) bool {
			v := numberFieldValue(p, name)
			switch op {
			case OperatorEquals:
				return v == value
			case OperatorNotEquals:
				return v != value
			case OperatorGreaterThan:
				return v > value
			case OperatorGreaterOrEqual:
				return v >= value
			case OperatorLessThan:
				return v < value
			case OperatorLessOrEqual:
				return v <= value
			}
			return false
		}, preview, nil
	}
}

// compileBooleanCondition builds the evaluator for a boolean-typed field
func compileBooleanCondition(field Field, cond Condition) (Predicate, string, error) {
	name := field.Name
	value, err := coerceBool(field, cond.Value)
	if err != nil {
		return nil, "", err
	}

	want := value
	if cond.Operator == OperatorNotEquals {
		want = !value
	}

	return func(p *catalog.Product) bool {
		return boolFieldValue(p, name) == want
	}, fmt.Sprintf("%s is %t", name, want), nil
}

// compileCollectionCondition builds the evaluator for a collection-typed
// field
func compileCollectionCondition(field Field, cond Condition) (Predicate, string, error) {
	name := field.Name

	switch cond.Operator {
	case OperatorIsEmpty:
		return func(p *catalog.Product) bool {
			return len(collectionFieldValue(p, name)) == 0
		}, name + " is empty", nil
	case OperatorIsNotEmpty:
		return func(p *catalog.Product) bool {
			return len(collectionFieldValue(p, name)) > 0
		}, name + " is not empty", nil
	}

	values, err := coerceStringList(field, cond.Value)
	if err != nil {
		return nil, "", err
	}
	preview := fmt.Sprintf("%s %s [%s]", name, strings.ReplaceAll(string(cond.Operator), "_", " "), strings.Join(values, ", "))

	switch cond.Operator {
	case OperatorContainsAny, OperatorOverlaps:
		return func(p *catalog.Product) bool {
			have := collectionFieldValue(p, name)
			for _, v := range values {
				if containsFold(have, v) {
					return true
				}
			}
			return false
		}, preview, nil
	case OperatorContainsAll, OperatorIsSuperset:
		return func(p *catalog.Product) bool {
			have := collectionFieldValue(p, name)
			for _, v := range values {
				if !containsFold(have, v) {
					return false
				}
			}
			return true
		}, preview, nil
	case OperatorIsSubset:
		return func(p *catalog.Product) bool {
			for _, v := range collectionFieldValue(p, name) {
				if !containsFold(values, v) {
					return false
				}
			}
			return true
		}, preview, nil
	}

	return nil, "", shared.NewDomainError("VALIDATION_ERROR", "Unsupported collection operator")
}

// stringFieldValue extracts a string attribute from the product
func stringFieldValue(p *catalog.Product, name string) string {
	switch name {
	case "code":
		return p.Code
	case "name":
		return p.Name
	case "description":
		return p.Description
	case "status":
		return string(p.Status)
	case "image_url":
		return p.ImageURL
	}
	return ""
}

// numberFieldValue extracts a numeric attribute from the product
func numberFieldValue(p *catalog.Product, name string) float64 {
	switch name {
	case "price":
		return p.Price.InexactFloat64()
	case "discount_percentage":
		return float64(p.DiscountPercentage)
	case "sort_order":
		return float64(p.SortOrder)
	}
	return 0
}

// boolFieldValue extracts a boolean attribute from the product
func boolFieldValue(p *catalog.Product, name string) bool {
	switch name {
	case "is_active":
		return p.IsActive()
	}
	return false
}

// collectionFieldValue extracts a collection attribute from the product
func collectionFieldValue(p *catalog.Product, name string) []string {
	switch name {
	case "categories":
		return p.Categories
	case "subcategories":
		return p.Subcategories
	}
	return nil
}

// containsFold reports whether list contains value, case-insensitively
func containsFold(list []string, value string) bool {
	for _, candidate := range list {
		if strings.EqualFold(candidate, value) {
			return true
		}
	}
	return false
}

// coerceString coerces a raw condition value to a string
func coerceString(field Field, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Field %q requires a value", field.Name))
	}
	return "", shared.NewDomainError("VALIDATION_ERROR",
		fmt.Sprintf("Cannot use %T as a string value for field %q", value, field.Name))
}

// coerceStringList coerces a raw condition value to a string list.
// A scalar is treated as a one-element list.
func coerceStringList(field Field, value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := coerceString(field, item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		s, err := coerceString(field, value)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
}

// coerceNumber coerces a raw condition value to a float64
func coerceNumber(field Field, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Cannot parse %q as a number for field %q", v, field.Name))
		}
		return f, nil
	case nil:
		return 0, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Field %q requires a numeric value", field.Name))
	}
	return 0, shared.NewDomainError("VALIDATION_ERROR",
		fmt.Sprintf("Cannot use %T as a numeric value for field %q", value, field.Name))
}

// coerceNumberList coerces a raw condition value to a float64 list
func coerceNumberList(field Field, value any) ([]float64, error) {
	switch v := value.(type) {
	case []float64:
		return v, nil
	case []any:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			f, err := coerceNumber(field, item)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
		return out, nil
	default:
		f, err := coerceNumber(field, value)
		if err != nil {
			return nil, err
		}
		return []float64{f}, nil
	}
}

// coerceBool coerces a raw condition value to a bool
func coerceBool(field Field, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Cannot parse %q as a boolean for field %q", v, field.Name))
		}
		return b, nil
	case nil:
		return false, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Field %q requires a boolean value", field.Name))
	}
	return false, shared.NewDomainError("VALIDATION_ERROR",
		fmt.Sprintf("Cannot use %T as a boolean value for field %q", value, field.Name))
}

// formatNumber renders a float without a trailing decimal point for whole
// numbers
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatNumbers renders a comma-separated number list
func formatNumbers(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, ", ")
}
