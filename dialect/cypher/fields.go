package cypher

// Typed condition builders. They reduce hand-built condition trees to
// one-liners and give a generated, schema-specific DSL surface something to
// alias:
//
//	var Name = cypher.StringField("name")
//	cypher.CompileWhere(view, []cypher.Condition{Name.Contains("a")})
//
// Field paths follow PropertyCondition scoping: "name" addresses the root,
// "assignedTo.name" a relationship target.

// StringField builds conditions over a string property.
type StringField string

// EQ returns a condition that checks if the field equals the given value.
func (f StringField) EQ(v string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpEQ, Value: v}
}

// NEQ returns a condition that checks if the field does not equal the given value.
func (f StringField) NEQ(v string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpNEQ, Value: v}
}

// In returns a condition that checks if the field value is in the given list.
func (f StringField) In(vs ...string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpIn, Value: vs}
}

// NotIn returns a condition that checks if the field value is not in the given list.
func (f StringField) NotIn(vs ...string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpNotIn, Value: vs}
}

// GT returns a condition that checks if the field is greater than the given value.
func (f StringField) GT(v string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpGT, Value: v}
}

// GTE returns a condition that checks if the field is greater than or equal to the given value.
func (f StringField) GTE(v string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpGTE, Value: v}
}

// LT returns a condition that checks if the field is less than the given value.
func (f StringField) LT(v string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpLT, Value: v}
}

// LTE returns a condition that checks if the field is less than or equal to the given value.
func (f StringField) LTE(v string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpLTE, Value: v}
}

// Contains returns a condition that checks if the field contains the given substring.
func (f StringField) Contains(v string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpContains, Value: v}
}

// HasPrefix returns a condition that checks if the field starts with the given prefix.
func (f StringField) HasPrefix(v string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpHasPrefix, Value: v}
}

// HasSuffix returns a condition that checks if the field ends with the given suffix.
func (f StringField) HasSuffix(v string) Condition {
	return &PropertyCondition{Path: string(f), Op: OpHasSuffix, Value: v}
}

// IsNull returns a condition that checks if the field is null.
func (f StringField) IsNull() Condition {
	return &PropertyCondition{Path: string(f), Op: OpIsNull}
}

// NotNull returns a condition that checks if the field is not null.
func (f StringField) NotNull() Condition {
	return &PropertyCondition{Path: string(f), Op: OpNotNull}
}

// Numeric is the value constraint for NumberField.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// NumberField builds conditions over a numeric property.
type NumberField[T Numeric] string

// EQ returns a condition that checks if the field equals the given value.
func (f NumberField[T]) EQ(v T) Condition {
	return &PropertyCondition{Path: string(f), Op: OpEQ, Value: v}
}

// NEQ returns a condition that checks if the field does not equal the given value.
func (f NumberField[T]) NEQ(v T) Condition {
	return &PropertyCondition{Path: string(f), Op: OpNEQ, Value: v}
}

// In returns a condition that checks if the field value is in the given list.
func (f NumberField[T]) In(vs ...T) Condition {
	return &PropertyCondition{Path: string(f), Op: OpIn, Value: vs}
}

// NotIn returns a condition that checks if the field value is not in the given list.
func (f NumberField[T]) NotIn(vs ...T) Condition {
	return &PropertyCondition{Path: string(f), Op: OpNotIn, Value: vs}
}

// GT returns a condition that checks if the field is greater than the given value.
func (f NumberField[T]) GT(v T) Condition {
	return &PropertyCondition{Path: string(f), Op: OpGT, Value: v}
}

// GTE returns a condition that checks if the field is greater than or equal to the given value.
func (f NumberField[T]) GTE(v T) Condition {
	return &PropertyCondition{Path: string(f), Op: OpGTE, Value: v}
}

// LT returns a condition that checks if the field is less than the given value.
func (f NumberField[T]) LT(v T) Condition {
	return &PropertyCondition{Path: string(f), Op: OpLT, Value: v}
}

// LTE returns a condition that checks if the field is less than or equal to the given value.
func (f NumberField[T]) LTE(v T) Condition {
	return &PropertyCondition{Path: string(f), Op: OpLTE, Value: v}
}

// IsNull returns a condition that checks if the field is null.
func (f NumberField[T]) IsNull() Condition {
	return &PropertyCondition{Path: string(f), Op: OpIsNull}
}

// NotNull returns a condition that checks if the field is not null.
func (f NumberField[T]) NotNull() Condition {
	return &PropertyCondition{Path: string(f), Op: OpNotNull}
}

// BoolField builds conditions over a boolean property.
type BoolField string

// EQ returns a condition that checks if the field equals the given value.
func (f BoolField) EQ(v bool) Condition {
	return &PropertyCondition{Path: string(f), Op: OpEQ, Value: v}
}

// IsTrue returns a condition that checks if the field is true.
func (f BoolField) IsTrue() Condition {
	return f.EQ(true)
}

// IsFalse returns a condition that checks if the field is false.
func (f BoolField) IsFalse() Condition {
	return f.EQ(false)
}

// IsNull returns a condition that checks if the field is null.
func (f BoolField) IsNull() Condition {
	return &PropertyCondition{Path: string(f), Op: OpIsNull}
}

// NotNull returns a condition that checks if the field is not null.
func (f BoolField) NotNull() Condition {
	return &PropertyCondition{Path: string(f), Op: OpNotNull}
}
