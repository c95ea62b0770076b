package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Users table - one account per email, password kept as entered
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Posts table - feed entries, newest has the highest id
		`CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			author TEXT NOT NULL REFERENCES users(email),
			content TEXT,
			image_path TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Scores table - one row per finished snake game
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL REFERENCES users(email) ON DELETE CASCADE,
			score INTEGER NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('running', 'collided', 'quit')),
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_email ON scores(email)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_score ON scores(score DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
