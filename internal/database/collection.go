package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrInvalidCollection is returned when a client supplied collection name is
// not part of the allow-list.
var ErrInvalidCollection = errors.New("invalid quiz domain type")

// Collection names one of the fixed question tables.
type Collection string

const (
	Domain1 Collection = "domain1"
	Domain2 Collection = "domain2"
	Domain3 Collection = "domain3"
	Domain4 Collection = "domain4"
	Domain5 Collection = "domain5"
	Domain6 Collection = "domain6"
	Domain7 Collection = "domain7"
	Domain8 Collection = "domain8"
	CBT     Collection = "cbt"
	Test    Collection = "test"
)

var allCollections = []Collection{
	Domain1, Domain2, Domain3, Domain4,
	Domain5, Domain6, Domain7, Domain8,
	CBT, Test,
}

// questionStatements holds the SQL for one question table.
type questionStatements struct {
	insertImported     string
	insert             string
	insertWithoutImage string
	list               string
	deleteByID         string
}

// statements is built once from the constant table names above, so request
// input never reaches SQL text.
var statements = buildStatements()

func buildStatements() map[Collection]questionStatements {
	m := make(map[Collection]questionStatements, len(allCollections))
	for _, c := range allCollections {
		table := pgx.Identifier{string(c)}.Sanitize()
		m[c] = questionStatements{
			insertImported: fmt.Sprintf(`INSERT INTO %s
    (question, option_a, option_b, option_c, option_d, correct_answer, explanation)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, table),
			insert: fmt.Sprintf(`INSERT INTO %s
    (question, option_a, option_b, option_c, option_d, correct_answer, explanation, question_image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`, table),
			insertWithoutImage: fmt.Sprintf(`INSERT INTO %s
    (question, option_a, option_b, option_c, option_d, correct_answer, explanation)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`, table),
			list: fmt.Sprintf(`SELECT id, question, option_a, option_b, option_c, option_d,
    correct_answer, explanation, question_image, created_at
FROM %s
ORDER BY id`, table),
			deleteByID: fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table),
		}
	}
	return m
}

// ParseCollection validates s against the allow-list.
// Matching is exact: no trimming or case folding.
func ParseCollection(s string) (Collection, error) {
	c := Collection(s)
	if _, ok := statements[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCollection, s)
	}
	return c, nil
}

// AllCollections returns the allow-list in declaration order.
func AllCollections() []Collection {
	out := make([]Collection, len(allCollections))
	copy(out, allCollections)
	return out
}

// IsDomain reports whether c is one of domain1..domain8.
func (c Collection) IsDomain() bool {
	return c != CBT && c != Test && c.Valid()
}

// Valid reports whether c is in the allow-list.
func (c Collection) Valid() bool {
	_, ok := statements[c]
	return ok
}

func (c Collection) String() string {
	return string(c)
}

func (c Collection) stmts() (questionStatements, error) {
	s, ok := statements[c]
	if !ok {
		return questionStatements{}, fmt.Errorf("%w: %q", ErrInvalidCollection, string(c))
	}
	return s, nil
}
