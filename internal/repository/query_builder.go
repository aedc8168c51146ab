package repository

import (
	"fmt"
	"strings"

	"github.com/noah-isme/ormawa-api/internal/models"
)

// conditions accumulates WHERE clauses with positional arguments.
// Each expr carries one %[1]d verb per use of the argument.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(expr string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(expr, len(c.args)))
}

func (c *conditions) raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func pageWindow(page, pageSize int) (limit, offset int) {
	_, limit, offset = models.NormalizePage(page, pageSize)
	return limit, offset
}
