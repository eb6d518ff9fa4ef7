package write

// SQLite output schema. Each invocation records one query run and the
// approaches it returned, in result order.
const (
	createQueryRuns = `CREATE TABLE query_runs (
    run_id TEXT PRIMARY KEY,
    criteria TEXT NOT NULL,
    result_limit INTEGER NOT NULL,
    created_at TEXT NOT NULL
);`

	createCloseApproaches = `CREATE TABLE close_approaches (
    run_id TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    datetime_utc TEXT NOT NULL,
    distance_au REAL NOT NULL,
    velocity_km_s REAL NOT NULL,
    designation TEXT NOT NULL,
    name TEXT,
    diameter_km REAL,
    potentially_hazardous INTEGER NOT NULL,
    PRIMARY KEY (run_id, ordinal),
    FOREIGN KEY (run_id) REFERENCES query_runs(run_id)
);`

	idxCloseApproachesDesignation = `CREATE INDEX idx_close_approaches_designation ON close_approaches(designation);`
)

// schemaDDL lists the statements in dependency order.
var schemaDDL = []string{
	createQueryRuns,
	createCloseApproaches,
	idxCloseApproachesDesignation,
}

const (
	insertQueryRun = `INSERT INTO query_runs (run_id, criteria, result_limit, created_at)
VALUES (:run_id, :criteria, :result_limit, :created_at)`

	insertCloseApproach = `INSERT INTO close_approaches (
    run_id, ordinal, datetime_utc, distance_au, velocity_km_s,
    designation, name, diameter_km, potentially_hazardous
) VALUES (
    :run_id, :ordinal, :datetime_utc, :distance_au, :velocity_km_s,
    :designation, :name, :diameter_km, :potentially_hazardous
)`
)
