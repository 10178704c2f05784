package driver

import (
	"database/sql"
	"log"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

var db *sql.DB

func ConnectDB() *sql.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/genesis?parseTime=true"
	}
	var err error
	db, err = sql.Open("mysql", ensureMultiStatements(dsn))
	if err != nil {
		log.Fatal("failed to open database:", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatal("failed to reach database:", err)
	}
	return db
}

// ensureMultiStatements adds multiStatements=true to the DSN when missing.
// Migration files hold several statements and the driver executes each file
// in a single call, which MySQL rejects without this parameter.
func ensureMultiStatements(dsn string) string {
	if strings.Contains(dsn, "multiStatements=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "multiStatements=true"
}
