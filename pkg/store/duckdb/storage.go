package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const ReportsTableSchema = `
	CREATE TABLE IF NOT EXISTS reports (
		id VARCHAR NOT NULL PRIMARY KEY,
		category VARCHAR NOT NULL,
		severity VARCHAR NOT NULL,
		urgency_score INTEGER NOT NULL,
		description VARCHAR,
		location VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		image_path VARCHAR
	);
`

var bootQueries = []string{
	ReportsTableSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
