package db

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var ErrUnsupportedDialect = errors.New("unsupported_db_type")

var defaultPorts = map[string]string{
	"postgres": "5432",
	"mysql":    "3306",
}

// Dialect picks the gorm dialector for cfg.Type. Every connection is pinned
// to UTC so stored timestamps compare the same across drivers.
func Dialect(cfg Config) (gorm.Dialector, error) {
	switch dbType := strings.ToLower(strings.TrimSpace(cfg.Type)); dbType {
	case "postgres", "postgresql":
		return postgres.Open(postgresDSN(cfg)), nil
	case "mysql":
		return mysql.Open(mysqlDSN(cfg)), nil
	case "sqlite", "":
		name := cfg.Name
		if name == "" {
			name = "teamroster.db"
		}
		return sqlite.Open(name), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, dbType)
	}
}

func hostPort(cfg Config, dbType string) string {
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = defaultPorts[dbType]
	}
	return net.JoinHostPort(strings.TrimSpace(cfg.Host), port)
}

func postgresDSN(cfg Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     hostPort(cfg, "postgres"),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": {sslMode}, "TimeZone": {"UTC"}}.Encode(),
	}
	return dsn.String()
}

func mysqlDSN(cfg Config) string {
	mc := mysqldriver.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = hostPort(cfg, "mysql")
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}
