package seed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// LoadProducts ingests a product CSV (name, description, full_stock,
// empty_stock) into the products table, ignoring names that already exist.
// Missing files are not an error; seeding is optional.
func LoadProducts(db *sqlx.DB, csvPath string, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	file, err := os.Open(csvPath)
	if err != nil {
		log.Debug("no product seed file", zap.String("path", csvPath))
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Warn("unable to read product seed header", zap.Error(err))
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Warn("unable to start product seed transaction", zap.Error(err))
		return
	}
	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO products (name, description, full_stock, empty_stock) VALUES (?, ?, ?, ?)`)
	if err != nil {
		log.Warn("unable to prepare product insert", zap.Error(err))
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("unable to read product seed row", zap.Error(err))
			continue
		}
		if len(record) < 2 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		description := strings.TrimSpace(record[1])
		var full, empty int64
		if len(record) > 2 {
			full, _ = strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
		}
		if len(record) > 3 {
			empty, _ = strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
		}

		if _, err := stmt.Exec(name, description, full, empty); err != nil {
			log.Warn("unable to insert product", zap.String("name", name), zap.Error(err))
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Warn("unable to commit product seed", zap.Error(err))
	} else if rows > 0 {
		log.Info("seeded product catalog", zap.Int("rows", rows))
	}
}
