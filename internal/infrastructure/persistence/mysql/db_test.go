package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

func TestNewDB_UnreachableReturnsNoCleanup(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database = config.DatabaseConfig{
		Host:      "127.0.0.1",
		Port:      1,
		User:      "root",
		DBName:    "bookstore",
		Charset:   "utf8mb4",
		ParseTime: true,
		Loc:       "Local",
	}

	db, cleanup, err := NewDB(cfg, zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Nil(t, cleanup)
}
