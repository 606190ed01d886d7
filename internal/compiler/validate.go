package compiler

import (
	"fmt"
	"regexp"
)

// Validation error codes (E100-E199)
const (
	ErrNoEntities        = "E100" // model declares no entities
	ErrInvalidIdentifier = "E101" // table, key or column is not a plain identifier
	ErrInvalidFieldType  = "E104" // invalid type string
	ErrDuplicateName     = "E105" // duplicate table, attribute or column
	ErrNullableKey       = "E106" // key attribute declared nullable

	// Association errors (E110-E119)
	ErrUnknownTarget   = "E110" // target table not declared
	ErrMissingColumn   = "E111" // to-one association without column
	ErrMissingMappedBy = "E112" // plural association without mapped_by
	ErrUnknownMappedBy = "E113" // mapped_by is not a column of the target
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// identifier matches names that are used unquoted in generated SQL.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a compiled model against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(model *Model) []ValidationError {
	if model == nil || len(model.Entities) == 0 {
		return []ValidationError{{
			Field:   "entity",
			Message: "model declares no entities",
			Code:    ErrNoEntities,
		}}
	}

	var errs []ValidationError
	tables := make(map[string]string)
	for i := range model.Entities {
		spec := &model.Entities[i]
		if owner, dup := tables[spec.Table]; dup {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("entity.%s.table", spec.Name),
				Message: fmt.Sprintf("table %q already used by %s", spec.Table, owner),
				Code:    ErrDuplicateName,
				Line:    spec.Pos.Line(),
			})
		}
		tables[spec.Table] = spec.Name
		errs = append(errs, validateEntity(model, spec)...)
	}
	return errs
}

func validateEntity(model *Model, spec *EntitySpec) []ValidationError {
	var errs []ValidationError
	path := "entity." + spec.Name
	line := spec.Pos.Line()

	checkIdent := func(field, name string) {
		if !identifier.MatchString(name) {
			errs = append(errs, ValidationError{
				Field:   path + "." + field,
				Message: fmt.Sprintf("%q is not a valid identifier", name),
				Code:    ErrInvalidIdentifier,
				Line:    line,
			})
		}
	}
	checkIdent("table", spec.Table)
	checkIdent("key", spec.Key)

	// Attribute names, to-one columns and association names share a namespace
	names := make(map[string]bool)
	claim := func(field, name string) {
		if names[name] {
			errs = append(errs, ValidationError{
				Field:   path + "." + field,
				Message: fmt.Sprintf("%q is declared more than once", name),
				Code:    ErrDuplicateName,
				Line:    line,
			})
		}
		names[name] = true
	}

	for _, attr := range spec.Attributes {
		field := "attributes." + attr.Name
		checkIdent(field, attr.Name)
		claim(field, attr.Name)
		if !isValidType(attr.Type) {
			errs = append(errs, ValidationError{
				Field:   path + "." + field,
				Message: fmt.Sprintf("invalid type %q (valid: string, int, float, bool)", attr.Type),
				Code:    ErrInvalidFieldType,
				Line:    line,
			})
		}
		if attr.Name == spec.Key && attr.Nullable {
			errs = append(errs, ValidationError{
				Field:   path + "." + field,
				Message: "key attribute must not be nullable",
				Code:    ErrNullableKey,
				Line:    line,
			})
		}
	}

	for _, assoc := range spec.Associations {
		field := "associations." + assoc.Name
		checkIdent(field, assoc.Name)
		if assoc.Name != assoc.Column {
			claim(field, assoc.Name)
		}

		target, ok := model.Table(assoc.Target)
		if !ok {
			errs = append(errs, ValidationError{
				Field:   path + "." + field + ".target",
				Message: fmt.Sprintf("unknown target table %q", assoc.Target),
				Code:    ErrUnknownTarget,
				Line:    line,
			})
		}

		if assoc.Plural {
			if assoc.MappedBy == "" {
				errs = append(errs, ValidationError{
					Field:   path + "." + field + ".mapped_by",
					Message: "plural association requires mapped_by",
					Code:    ErrMissingMappedBy,
					Line:    line,
				})
				continue
			}
			checkIdent(field+".mapped_by", assoc.MappedBy)
			if ok && !target.HasColumn(assoc.MappedBy) {
				errs = append(errs, ValidationError{
					Field:   path + "." + field + ".mapped_by",
					Message: fmt.Sprintf("%q is not a column of %s", assoc.MappedBy, assoc.Target),
					Code:    ErrUnknownMappedBy,
					Line:    line,
				})
			}
			continue
		}

		if assoc.Column == "" {
			errs = append(errs, ValidationError{
				Field:   path + "." + field + ".column",
				Message: "to-one association requires column",
				Code:    ErrMissingColumn,
				Line:    line,
			})
			continue
		}
		checkIdent(field+".column", assoc.Column)
		claim(field+".column", assoc.Column)
	}

	return errs
}

// isValidType checks if a type string is a valid model type.
func isValidType(t string) bool {
	switch t {
	case TypeString, TypeInt, TypeFloat, TypeBool:
		return true
	default:
		return false
	}
}
