package repository

import (
	"strings"

	"housing-assistant/internal/model"
)

// likeEscaper makes LIKE wildcards in user text match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching s as a literal substring
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// queryBuilder accumulates WHERE conditions with `?` placeholders.
// The caller rebinds the final query for the active driver.
type queryBuilder struct {
	conditions []string
	args       []interface{}
	likeOp     string
}

func newQueryBuilder(likeOp string) *queryBuilder {
	return &queryBuilder{
		conditions: []string{"1=1"},
		args:       make([]interface{}, 0, 6),
		likeOp:     likeOp,
	}
}

func (qb *queryBuilder) addCondition(condition string, args ...interface{}) {
	qb.conditions = append(qb.conditions, condition)
	qb.args = append(qb.args, args...)
}

// addKeyword matches the keyword as a substring of title, description or address
func (qb *queryBuilder) addKeyword(keyword string) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return
	}
	pattern := containsPattern(keyword)
	qb.addCondition(
		"(title "+qb.like()+" OR description "+qb.like()+" OR address "+qb.like()+")",
		pattern, pattern, pattern,
	)
}

func (qb *queryBuilder) addCity(city *string) {
	if city == nil || strings.TrimSpace(*city) == "" {
		return
	}
	qb.addCondition("city "+qb.like(), containsPattern(strings.TrimSpace(*city)))
}

// like returns the substring comparison with its placeholder
func (qb *queryBuilder) like() string {
	return qb.likeOp + ` ? ESCAPE '\'`
}

func (qb *queryBuilder) addPriceRange(min, max *int64) {
	if min != nil {
		qb.addCondition("price >= ?", *min)
	}
	if max != nil {
		qb.addCondition("price <= ?", *max)
	}
}

func (qb *queryBuilder) where() (string, []interface{}) {
	return strings.Join(qb.conditions, " AND "), qb.args
}

// applyFilters builds the WHERE clause and arguments for a listing search
func applyFilters(filters model.SearchFilters, likeOp string) (string, []interface{}) {
	qb := newQueryBuilder(likeOp)
	qb.addKeyword(filters.Keyword)
	qb.addCity(filters.City)
	qb.addPriceRange(filters.MinPrice, filters.MaxPrice)
	return qb.where()
}
