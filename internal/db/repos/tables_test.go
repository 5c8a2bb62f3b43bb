package repos

import (
	"regexp"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/celestiaorg/memberenv/internal/db/models"
)

func (s *RepositoryTestSuite) TestCount_RejectsUnmanagedTable() {
	_, err := s.counter.Count(s.ctx, "public.users")
	s.Error(err)
	s.Contains(err.Error(), "not managed")
}

func (s *RepositoryTestSuite) TestCountAll() {
	for _, table := range models.ManagedTables {
		s.mock.ExpectQuery(`SELECT count\(\*\) FROM ` + regexp.QuoteMeta(quoteTable(table))).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	}

	counts, err := s.counter.CountAll(s.ctx)
	s.Require().NoError(err)
	s.Len(counts, len(models.ManagedTables))
	for table, n := range counts {
		s.Zero(n, table)
	}
}

// quoteTable renders schema.table the way the postgres dialector quotes it
func quoteTable(table string) string {
	for i := 0; i < len(table); i++ {
		if table[i] == '.' {
			return `"` + table[:i] + `"."` + table[i+1:] + `"`
		}
	}
	return `"` + table + `"`
}
