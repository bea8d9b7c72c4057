package store

import (
	"fmt"
	"net/url"
	"strings"
)

// dialect captures the SQL differences between the supported archives.
type dialect struct {
	driver        string
	uuidType      string
	timestampType string
	indexes       bool
	numbered      bool
}

var (
	postgresDialect = dialect{
		driver:        "pgx",
		uuidType:      "uuid",
		timestampType: "timestamptz NOT NULL DEFAULT now()",
		indexes:       true,
		numbered:      true,
	}
	mysqlDialect = dialect{
		driver:        "mysql",
		uuidType:      "char(36)",
		timestampType: "timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP",
	}
)

// placeholders returns n bind parameters: $1,$2,... or ?,?,...
func (d dialect) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if d.numbered {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ",")
}

// resolveDSN picks the dialect for dsn and returns the DSN in the form its
// driver expects.
func resolveDSN(dsn string) (dialect, string, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return dialect{}, "", fmt.Errorf("database url is empty")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgresDialect, dsn, nil
	case strings.HasPrefix(dsn, "mariadb://"), strings.HasPrefix(dsn, "mysql://"):
		converted, err := toMySQLDSN(dsn)
		if err != nil {
			return dialect{}, "", err
		}
		return mysqlDialect, converted, nil
	case strings.Contains(dsn, "@tcp(") || strings.Contains(dsn, "@unix("):
		return mysqlDialect, dsn, nil
	default:
		// key=value connection strings
		return postgresDialect, dsn, nil
	}
}

// toMySQLDSN converts mariadb:// or mysql:// URLs to the go-sql-driver
// format. Anything else passes through.
func toMySQLDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mariadb://") && !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	user := ""
	pass := ""
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	host := u.Host
	db := strings.TrimPrefix(u.Path, "/")
	if user == "" || host == "" || db == "" {
		return "", fmt.Errorf("incomplete dsn (user/host/db required)")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
		user, pass, host, db), nil
}
