package write

import (
	"context"
	"database/sql"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/neo/pkg/types"
)

// sqliteDriver is the database/sql driver name registered by modernc.org/sqlite.
const sqliteDriver = "sqlite"

type queryRunRow struct {
	RunID       string `db:"run_id"`
	Criteria    string `db:"criteria"`
	ResultLimit int    `db:"result_limit"`
	CreatedAt   string `db:"created_at"`
}

type approachRow struct {
	RunID                string          `db:"run_id"`
	Ordinal              int             `db:"ordinal"`
	DatetimeUTC          string          `db:"datetime_utc"`
	DistanceAU           float64         `db:"distance_au"`
	VelocityKMS          float64         `db:"velocity_km_s"`
	Designation          string          `db:"designation"`
	Name                 sql.NullString  `db:"name"`
	DiameterKM           sql.NullFloat64 `db:"diameter_km"`
	PotentiallyHazardous bool            `db:"potentially_hazardous"`
}

// SQLite writes results into a fresh SQLite database at path, replacing any
// existing file. The database is built next to path and renamed into place
// once the transaction commits.
func SQLite(ctx context.Context, path string, results iter.Seq[*types.CloseApproach], meta Meta) (int, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.Wrap(err, "create output directory")
	}
	tmp, err := os.CreateTemp(dir, ".neo-*.db")
	if err != nil {
		return 0, errors.Wrap(err, "create temp database")
	}
	tmpName := tmp.Name()
	tmp.Close()

	n, err := writeSQLite(ctx, tmpName, results, meta)
	if err != nil {
		os.Remove(tmpName)
		return n, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return n, errors.Wrap(err, "rename temp database")
	}
	return n, nil
}

func writeSQLite(ctx context.Context, path string, results iter.Seq[*types.CloseApproach], meta Meta) (int, error) {
	db, err := sqlx.ConnectContext(ctx, sqliteDriver, path)
	if err != nil {
		return 0, errors.Wrap(err, "open sqlite")
	}
	defer db.Close()

	return storeRun(ctx, db, results, meta)
}

// storeRun creates the schema and inserts one run with its results in a
// single transaction. Nothing is committed if any insert fails.
func storeRun(ctx context.Context, db *sqlx.DB, results iter.Seq[*types.CloseApproach], meta Meta) (int, error) {
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return 0, errors.Wrap(err, "create schema")
		}
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	run := queryRunRow{
		RunID:       newRunID(),
		Criteria:    meta.Criteria,
		ResultLimit: meta.Limit,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := tx.NamedExecContext(ctx, insertQueryRun, run); err != nil {
		return 0, errors.Wrap(err, "insert query run")
	}

	stmt, err := tx.PrepareNamedContext(ctx, insertCloseApproach)
	if err != nil {
		return 0, errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	n := 0
	for ca := range results {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		row := approachRow{
			RunID:                run.RunID,
			Ordinal:              n + 1,
			DatetimeUTC:          ca.TimeString(),
			DistanceAU:           ca.Distance,
			VelocityKMS:          ca.Velocity,
			Designation:          ca.NEO.Designation,
			Name:                 sql.NullString{String: ca.NEO.Name, Valid: ca.NEO.HasName()},
			DiameterKM:           sql.NullFloat64{Float64: ca.NEO.Diameter, Valid: ca.NEO.HasDiameter()},
			PotentiallyHazardous: ca.NEO.Hazardous,
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return n, errors.Wrapf(err, "insert approach %d", n+1)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return n, errors.Wrap(err, "commit")
	}
	return n, nil
}

// newRunID returns a UUID v7, falling back to v4 if v7 generation fails.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
