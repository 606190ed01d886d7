package querysql

import (
	"fmt"

	"github.com/roach88/specq/internal/metamodel"
	"github.com/roach88/specq/internal/predicate"
)

// FetchPlan is one eager load derived from a fetch hint.
type FetchPlan struct {
	// Association describes how the rows are reached from the owner.
	Association metamodel.Association

	// KeyColumn is the owner column whose values select the rows: the
	// local column of a to-one association or the owner key of a to-many.
	KeyColumn string

	// MatchColumn is the target column compared against those values.
	MatchColumn string
}

// Plan returns the eager loads requested by the fetch hints in p, in
// first-seen order. Hints on attributes that are not associations load
// nothing and are skipped.
func (c *SQLCompiler[E]) Plan(p predicate.Predicate[E]) ([]FetchPlan, error) {
	if c.entity == nil {
		return nil, fmt.Errorf("cannot plan without an entity")
	}
	var plans []FetchPlan
	for _, target := range predicate.Fetches(p) {
		assoc, ok := target.Association()
		if !ok {
			continue
		}
		plan := FetchPlan{Association: assoc}
		if assoc.Plural {
			plan.KeyColumn = c.entity.Key()
			plan.MatchColumn = assoc.MappedBy
		} else {
			plan.KeyColumn = assoc.LocalColumn
			plan.MatchColumn = assoc.TargetKey
		}
		if err := checkPlan(plan); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", assoc.Name, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func checkPlan(plan FetchPlan) error {
	if err := checkIdent("table", plan.Association.Target); err != nil {
		return err
	}
	if err := checkIdent("column", plan.MatchColumn); err != nil {
		return err
	}
	return checkIdent("column", plan.KeyColumn)
}

// CompileFetch builds the SELECT loading plan's rows for the given owner
// key values. The rows are ordered by the match column, then by the target
// key when it differs, for deterministic grouping.
func CompileFetch(plan FetchPlan, keys []any) (string, []any) {
	if len(keys) == 0 {
		return fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", plan.Association.Target), nil
	}

	targetKey := plan.Association.TargetKey
	if targetKey == "" {
		targetKey = metamodel.DefaultKey
	}

	orderBy := stableOrderKey(plan.MatchColumn)
	if targetKey != plan.MatchColumn {
		orderBy += ", " + stableOrderKey(targetKey)
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s) ORDER BY %s",
		plan.Association.Target,
		plan.MatchColumn,
		placeholders(len(keys)),
		orderBy)

	params := make([]any, len(keys))
	copy(params, keys)
	return sql, params
}
