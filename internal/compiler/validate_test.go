package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	model, err := CompileModelString(shopModel)
	require.NoError(t, err)
	assert.Empty(t, Validate(model))
}

func TestValidate_NoEntities(t *testing.T) {
	errs := Validate(&Model{})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNoEntities, errs[0].Code)

	assert.Equal(t, []string{ErrNoEntities}, codes(Validate(nil)))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		model string
		code  string
		field string
	}{
		{
			name: "duplicate table",
			model: `
				entity: A: {table: "things"}
				entity: B: {table: "things"}`,
			code:  ErrDuplicateName,
			field: "entity.B.table",
		},
		{
			name:  "invalid table identifier",
			model: `entity: A: {table: "my things"}`,
			code:  ErrInvalidIdentifier,
			field: "entity.A.table",
		},
		{
			name:  "invalid key identifier",
			model: `entity: A: {key: "id;"}`,
			code:  ErrInvalidIdentifier,
			field: "entity.A.key",
		},
		{
			name:  "nullable key",
			model: `entity: A: {attributes: id: int | null}`,
			code:  ErrNullableKey,
			field: "entity.A.attributes.id",
		},
		{
			name: "unknown target",
			model: `
				entity: A: {associations: b: {target: "nowhere", column: "b_id"}}`,
			code:  ErrUnknownTarget,
			field: "entity.A.associations.b.target",
		},
		{
			name: "to-one without column",
			model: `
				entity: A: {associations: b: {target: "a"}}`,
			code:  ErrMissingColumn,
			field: "entity.A.associations.b.column",
		},
		{
			name: "plural without mapped_by",
			model: `
				entity: A: {associations: bs: {target: "b", plural: true}}
				entity: B: {table: "b"}`,
			code:  ErrMissingMappedBy,
			field: "entity.A.associations.bs.mapped_by",
		},
		{
			name: "mapped_by not a target column",
			model: `
				entity: A: {associations: bs: {target: "b", mapped_by: "a_id", plural: true}}
				entity: B: {table: "b"}`,
			code:  ErrUnknownMappedBy,
			field: "entity.A.associations.bs.mapped_by",
		},
		{
			name: "column clashes with attribute",
			model: `
				entity: A: {
					attributes: b_id: int
					associations: b: {target: "a", column: "b_id"}
				}`,
			code:  ErrDuplicateName,
			field: "entity.A.associations.b.column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := mustModel(t, tt.model)
			errs := Validate(model)
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidate_MappedByCanBeToOneColumn(t *testing.T) {
	model := mustModel(t, `
		entity: A: {associations: bs: {target: "b", mapped_by: "a_id", plural: true}}
		entity: B: {table: "b", associations: a: {target: "a", column: "a_id"}}
	`)
	assert.Empty(t, Validate(model))
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	model := mustModel(t, `
		entity: A: {
			table: "bad table"
			attributes: id: int | null
			associations: {
				b: {target: "nowhere", column: "b_id"}
				c: {target: "a"}
			}
		}
	`)

	assert.ElementsMatch(t,
		[]string{ErrInvalidIdentifier, ErrNullableKey, ErrUnknownTarget, ErrUnknownTarget, ErrMissingColumn},
		codes(Validate(model)))
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "entity.A.table", Message: "bad", Code: ErrInvalidIdentifier}
	assert.Equal(t, "[E101] entity.A.table: bad", err.Error())

	err.Line = 3
	assert.Equal(t, "[E101] line 3: entity.A.table: bad", err.Error())
}

func TestIsValidType(t *testing.T) {
	for _, typ := range []string{TypeString, TypeInt, TypeFloat, TypeBool} {
		assert.True(t, isValidType(typ), typ)
	}
	assert.False(t, isValidType("array"))
	assert.False(t, isValidType(""))
}
