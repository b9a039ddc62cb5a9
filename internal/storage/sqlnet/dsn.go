package sqlnet

import (
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLDSN builds a go-sql-driver DSN for a TCP server.
func MySQLDSN(addr, user, password, dbName string, timeout time.Duration) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.User = user
	cfg.Passwd = password
	cfg.DBName = dbName
	cfg.Timeout = timeout
	cfg.ReadTimeout = timeout
	cfg.WriteTimeout = timeout
	return cfg.FormatDSN()
}
