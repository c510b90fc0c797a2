package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:ingest.db?cache=shared"
	//   ":memory:"
	DSN string

	// Table is the target table name for inserts. Dotted values such as
	// "main.events" are quoted per segment.
	Table string
}
