package config

// DB holds the database configuration settings.
type DB struct {
	Extras     string // extra DSN parameters appended verbatim
	Host       string
	Port       int
	User       string
	Password   string
	Name       string // database name, or the file path for sqlite
	GormEngine string // one of mysql, postgres, sqlite
}
