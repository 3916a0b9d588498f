package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"weapon-quiz-service/internal/catalog"
)

// WeaponRow is the bun model of the weapons mirror table.
type WeaponRow struct {
	bun.BaseModel `bun:"table:weapons"`

	ID       string          `bun:"id,pk"`
	Name     string          `bun:"name"`
	Data     json.RawMessage `bun:"data,type:jsonb"`
	SyncedAt time.Time       `bun:"synced_at"`
}

// WeaponWriter upserts catalog records into the mirror.
type WeaponWriter struct {
	db  *bun.DB
	now func() time.Time
}

func NewWeaponWriter(db *bun.DB) *WeaponWriter {
	return &WeaponWriter{db: db, now: time.Now}
}

// Upsert stores records keyed by id. Records without an id are keyed by
// name; records with neither are skipped. Returns the number of rows written.
func (w *WeaponWriter) Upsert(ctx context.Context, records []catalog.Record) (int, error) {
	now := w.now().UTC()
	rows := make([]WeaponRow, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			id = strings.TrimSpace(rec.Name)
		}
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		data, err := json.Marshal(rec)
		if err != nil {
			return 0, fmt.Errorf("marshal weapon %s: %w", id, err)
		}
		rows = append(rows, WeaponRow{ID: id, Name: rec.Name, Data: data, SyncedAt: now})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	_, err := w.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("data = EXCLUDED.data").
		Set("synced_at = EXCLUDED.synced_at").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("upsert weapons: %w", err)
	}
	return len(rows), nil
}
