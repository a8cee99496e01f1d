package counter

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tallier/tallier/platform/pg"
)

const (
	pgGetCounter = `
		SELECT
			count
		FROM
			%s.counters
		WHERE
			name = $1
			AND period_type = $2
			AND period_scope = $3
		LIMIT
			1`
	pgUpsertCounter = `
		INSERT INTO %s.counters(name, period_type, period_scope, count)
		VALUES($1, $2, $3, $4)
		ON CONFLICT (name, period_type, period_scope) DO
		UPDATE SET
			count = $4`

	pgCreateSchema = `CREATE SCHEMA IF NOT EXISTS %s`
	pgCreateTable  = `
		CREATE TABLE IF NOT EXISTS %s.counters(
			name TEXT NOT NULL,
			period_type TEXT NOT NULL,
			period_scope TEXT NOT NULL,
			count BIGINT NOT NULL,
			created_at TIMESTAMP WITHOUT TIME ZONE DEFAULT (now() AT TIME ZONE 'utc'),
			updated_at TIMESTAMP WITHOUT TIME ZONE DEFAULT (now() AT TIME ZONE 'utc'),

			PRIMARY KEY (name, period_type, period_scope)
		)`
	pgDropTable = `DROP TABLE IF EXISTS %s.counters CASCADE`

	pgIndexCounterName = `
		CREATE INDEX
			%s
		ON
			%s.counters
		USING
			btree(name)`
)

type pgService struct {
	db *sqlx.DB
}

// PostgresService returns a Postgres based Service implementation.
func PostgresService(db *sqlx.DB) Service {
	return &pgService{db: db}
}

func (s *pgService) Get(
	ns, name string,
	periodType PeriodType,
	periodScope string,
) (*Counter, error) {
	var (
		args  = []interface{}{name, string(periodType), periodScope}
		query = fmt.Sprintf(pgGetCounter, ns)

		count int64
	)

	err := s.db.Get(&count, query, args...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		err = s.db.Get(&count, query, args...)
	}
	if err == sql.ErrNoRows {
		return nil, wrapError(ErrNotFound, "%s%s%s%s%s", name, KeySeparator, periodType, KeySeparator, periodScope)
	}
	if err != nil {
		return nil, err
	}

	return &Counter{
		Count:       count,
		Name:        name,
		PeriodType:  periodType,
		PeriodScope: periodScope,
	}, nil
}

func (s *pgService) Put(ns string, input *Counter) (*Counter, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		args = []interface{}{
			input.Name,
			string(input.PeriodType),
			input.PeriodScope,
			input.Count,
		}
		query = fmt.Sprintf(pgUpsertCounter, ns)
	)

	_, err := s.db.Exec(query, args...)
	if err != nil && pg.IsRelationNotFound(pg.WrapError(err)) {
		if err := s.Setup(ns); err != nil {
			return nil, err
		}

		_, err = s.db.Exec(query, args...)
	}
	if err != nil {
		return nil, err
	}

	return input, nil
}

func (s *pgService) Setup(ns string) error {
	for _, q := range []string{
		fmt.Sprintf(pgCreateSchema, ns),
		fmt.Sprintf(pgCreateTable, ns),
		pg.GuardIndex(ns, "counter_name", pgIndexCounterName),
	} {
		_, err := s.db.Exec(q)
		if err != nil {
			return fmt.Errorf("setup '%s': %s", q, err)
		}
	}

	return nil
}

func (s *pgService) Teardown(ns string) error {
	for _, q := range []string{
		fmt.Sprintf(pgDropTable, ns),
	} {
		_, err := s.db.Exec(q)
		if err != nil {
			return fmt.Errorf("teardown '%s': %s", q, err)
		}
	}

	return nil
}
