package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"weapon-quiz-service/internal/catalog"
	"weapon-quiz-service/internal/domain"
)

// WeaponMirror reads weapon records from the local Postgres copy of the catalog.
type WeaponMirror struct {
	pool *pgxpool.Pool
}

func NewWeaponMirror(pool *pgxpool.Pool) *WeaponMirror {
	return &WeaponMirror{pool: pool}
}

// FetchRecords implements catalog.RecordSource. Rows whose JSON no longer
// decodes are skipped like any other defective record.
func (m *WeaponMirror) FetchRecords(ctx context.Context, limit int) ([]catalog.Record, error) {
	query := `SELECT data FROM weapons ORDER BY name, id`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := m.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query weapons: %v", domain.ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: scan weapon: %v", domain.ErrMalformedRecord, err)
		}
		var rec catalog.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read weapons: %v", domain.ErrSourceUnavailable, err)
	}
	return records, nil
}
