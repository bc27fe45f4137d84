package mysql

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"

	"BlackByte_Forum/internal/model"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	gmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// sqlite 自带的 LOWER 只处理 ASCII，搜索时改用 foldLowerFunc
const foldLowerFunc = "fold_lower"

var registerFoldLower = sync.OnceValue(func() error {
	return gosqlite.RegisterDeterministicScalarFunction(foldLowerFunc, 1, foldLower)
})

func foldLower(_ *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// lowerFunc 当前方言下的小写函数
func lowerFunc(db *gorm.DB) string {
	if db.Dialector.Name() == DriverSQLite {
		return foldLowerFunc
	}
	return "LOWER"
}

// Open 按驱动打开数据库；sqlite 只允许单连接，避免写锁冲突
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverMySQL:
		dialector = gmysql.Open(dsn)
	case DriverSQLite:
		if err := registerFoldLower(); err != nil {
			return nil, fmt.Errorf("register %s: %w", foldLowerFunc, err)
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
	}
	return db, nil
}

// AutoMigrate 建表（开发阶段和测试使用）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Forum{},
		&model.Post{},
		&model.Attachment{},
		&model.Reply{},
		&model.Session{},
		&model.ContentOutbox{},
	)
}
