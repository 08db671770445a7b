package mysql

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
// 5. 返回的cleanup关闭连接池，初始化中途失败时连接池已关闭
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := Open(cfg.Database.DSN(), cfg.Server.Mode == "debug")
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 工作单元独占一个连接直到提交，MaxOpenConns同时也是并发结算的上限
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			log.Warn("关闭数据库连接池失败", zap.Error(err))
		}
	}

	if err := sqlDB.Ping(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info("数据库连接成功", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := AutoMigrate(db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, cleanup, nil
}

// Open 按DSN打开连接（集成测试直接使用）
func Open(dsn string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return db, nil
}

// AutoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookModel{},
		&AddressModel{},
		&InventoryModel{},
		&CartModel{},
		&LineItemModel{},
		&OrderModel{},
	)
}

// BookModel GORM图书模型（目录服务维护，本服务只读）
type BookModel struct {
	ID        uint            `gorm:"primaryKey"`
	ISBN      string          `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title     string          `gorm:"size:200;not null;comment:书名"`
	Author    string          `gorm:"size:100;not null;comment:作者"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:当前价格"`
	CreatedAt time.Time       `gorm:"comment:创建时间"`
	UpdatedAt time.Time       `gorm:"comment:更新时间"`
}

func (BookModel) TableName() string {
	return "books"
}

// AddressModel GORM地址模型
type AddressModel struct {
	ID         uint      `gorm:"primaryKey"`
	CustomerID uint      `gorm:"index;not null;comment:顾客ID"`
	Recipient  string    `gorm:"size:50;not null;comment:收件人"`
	Phone      string    `gorm:"size:20;comment:电话"`
	Line1      string    `gorm:"size:255;not null;comment:详细地址"`
	City       string    `gorm:"size:100;not null;comment:城市"`
	PostalCode string    `gorm:"size:20;comment:邮编"`
	Country    string    `gorm:"size:2;not null;comment:国家代码"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
}

func (AddressModel) TableName() string {
	return "addresses"
}

// InventoryModel GORM库存模型
// book_id唯一：每本书一条库存记录
type InventoryModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"uniqueIndex;not null;comment:图书ID"`
	Quantity  int       `gorm:"not null;default:0;comment:可用库存"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (InventoryModel) TableName() string {
	return "inventories"
}

// CartModel GORM购物车模型
// 可选字段使用指针，NULL表示未填写
type CartModel struct {
	ID                uint            `gorm:"primaryKey"`
	CustomerID        uint            `gorm:"index;not null;comment:顾客ID"`
	Status            string          `gorm:"size:16;not null;default:active;comment:状态(active/inactive)"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;comment:总价"`
	BillingAddressID  *uint           `gorm:"comment:账单地址ID"`
	ShippingAddressID *uint           `gorm:"comment:收货地址ID"`
	DeliveryMethod    *string         `gorm:"size:32;comment:配送方式"`
	LineItems         []LineItemModel `gorm:"foreignKey:CartID"`
	CreatedAt         time.Time       `gorm:"comment:创建时间"`
	UpdatedAt         time.Time       `gorm:"comment:更新时间"`
}

func (CartModel) TableName() string {
	return "carts"
}

// LineItemModel GORM购物车明细模型
// (cart_id, book_id)唯一：同一本书在购物车中只有一行
type LineItemModel struct {
	ID         uint            `gorm:"primaryKey"`
	CartID     uint            `gorm:"uniqueIndex:uk_cart_book;not null;comment:购物车ID"`
	BookID     uint            `gorm:"uniqueIndex:uk_cart_book;not null;comment:图书ID"`
	Quantity   int             `gorm:"not null;comment:数量"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:加入时单价"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:小计"`
	CreatedAt  time.Time       `gorm:"comment:创建时间"`
	UpdatedAt  time.Time       `gorm:"comment:更新时间"`
}

func (LineItemModel) TableName() string {
	return "line_items"
}

// OrderModel GORM订单模型
// cart_id唯一：一个购物车最多一个订单
type OrderModel struct {
	ID            uint      `gorm:"primaryKey"`
	OrderNo       string    `gorm:"uniqueIndex;size:40;not null;comment:订单号"`
	CustomerID    uint      `gorm:"index;not null;comment:顾客ID"`
	CartID        uint      `gorm:"uniqueIndex;not null;comment:购物车ID"`
	PaymentMethod string    `gorm:"size:32;not null;comment:支付方式"`
	Status        string    `gorm:"size:16;not null;comment:订单状态"`
	CreatedAt     time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt     time.Time `gorm:"comment:更新时间"`
}

func (OrderModel) TableName() string {
	return "orders"
}
