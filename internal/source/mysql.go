package source

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KaramelBytes/dqmon-cli/internal/quality"
)

type mysqlSource struct {
	db *gorm.DB
}

func openMySQL(ctx context.Context, cfg Config) (Source, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, unavailable("mysql", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, unavailable("mysql", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, unavailable("mysql", err)
	}
	return &mysqlSource{db: db}, nil
}

func (s *mysqlSource) Tables(ctx context.Context) ([]string, error) {
	tables, err := s.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, unavailable("mysql", err)
	}
	sort.Strings(tables)
	return tables, nil
}

func (s *mysqlSource) Snapshot(ctx context.Context, table string) (*quality.Snapshot, error) {
	if err := requireTable(ctx, s, table); err != nil {
		return nil, err
	}
	rows, err := s.db.WithContext(ctx).Raw("SELECT * FROM " + quoteBacktick(table)).Rows()
	if err != nil {
		return nil, unavailable("mysql", err)
	}
	defer rows.Close()
	snap, err := scanRows(rows)
	if err != nil {
		return nil, unavailable("mysql", fmt.Errorf("read %s: %w", table, err))
	}
	return snap, nil
}

func (s *mysqlSource) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
