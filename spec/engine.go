package spec

import "fmt"

// Engine selects the type-mapping rules a specification compiles against.
type Engine string

const (
	MySQL      Engine = "mysql"
	PostgreSQL Engine = "postgresql"
	SQLite     Engine = "sqlite"
)

// DefaultEngine is used when neither the config file nor the command line
// names a target.
const DefaultEngine = MySQL

func ParseEngine(s string) (Engine, error) {
	switch e := Engine(s); e {
	case MySQL, PostgreSQL, SQLite:
		return e, nil
	}
	return "", fmt.Errorf("unsupported engine %q (mysql, postgresql, sqlite)", s)
}
