package aggregates

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
)

// CASGuard applies versioned writes: a row changes only if its version column
// still holds the value the caller read, and every applied write bumps it.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// UpdateByVersion writes updates plus version=readVersion+1 and updated_at.
// It reports false without error when another writer got there first.
func (g CASGuard) UpdateByVersion(dbc dbctx.Context, table string, id uuid.UUID, readVersion int, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	if table == "" || id == uuid.Nil {
		return false, ValidationError("table and id are required for UpdateByVersion")
	}
	if readVersion < 0 {
		return false, ValidationError("read version must be >= 0")
	}
	row := make(map[string]any, len(updates)+2)
	maps.Copy(row, updates)
	row["version"] = readVersion + 1
	if _, ok := row["updated_at"]; !ok {
		row["updated_at"] = time.Now().UTC()
	}
	res := db.Table(table).
		Where("id = ? AND version = ?", id, readVersion).
		Updates(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Apply is UpdateByVersion with a stale write reported as CodeConflict, which
// the version-CAS retry loop re-runs after re-reading.
func (g CASGuard) Apply(dbc dbctx.Context, table string, id uuid.UUID, readVersion int, updates map[string]any, what string) error {
	ok, err := g.UpdateByVersion(dbc, table, id, readVersion, updates)
	if err != nil {
		return err
	}
	if !ok {
		return ConflictError(fmt.Sprintf("%s changed concurrently (read version %d)", strings.TrimSpace(what), readVersion))
	}
	return nil
}
