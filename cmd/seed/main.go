package main

import (
	"fmt"
	"time"

	"github.com/fitmarket-next/internal/config"
	"github.com/fitmarket-next/internal/constants"
	"github.com/fitmarket-next/internal/logger"
	"github.com/fitmarket-next/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultManager("", ""); err != nil {
		stdLog.Printf("Failed to init default manager: %v", err)
	}

	// 演示用户（教练与客户）
	users := []struct {
		Email       string
		Password    string
		DisplayName string
		Role        string
	}{
		{Email: "trainer@fitmarket.dev", Password: "Trainer@123", DisplayName: "演示教练", Role: constants.UserRoleTrainer},
		{Email: "client@fitmarket.dev", Password: "Client@123", DisplayName: "演示客户", Role: constants.UserRoleClient},
	}

	userIDs := map[string]uint{}
	for _, u := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", u.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", u.Email)
			userIDs[u.Role] = existing.ID
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Printf("Failed to hash password for %s: %v", u.Email, err)
			continue
		}
		user := models.User{
			Email:        u.Email,
			PasswordHash: string(hash),
			DisplayName:  u.DisplayName,
			Role:         u.Role,
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", u.Email, err)
			continue
		}
		stdLog.Printf("Created user: %s (%s)", u.Email, u.Role)
		userIDs[u.Role] = user.ID
	}

	trainerID := userIDs[constants.UserRoleTrainer]
	clientID := userIDs[constants.UserRoleClient]
	if trainerID == 0 || clientID == 0 {
		stdLog.Fatalf("demo users missing, cannot seed orders")
	}

	// 演示订单（已支付，等待交付）
	now := time.Now()
	paidAt := now.Add(-2 * time.Hour)
	orders := []struct {
		OrderNo string
		Items   []models.OrderItem
	}{
		{
			OrderNo: "FM-SEED-0001",
			Items: []models.OrderItem{
				{
					ProductName: "私教课程包（10 节）",
					UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(1299.00)),
					Quantity:    1,
					TotalPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(1299.00)),
				},
				{
					ProductName: "运动蛋白粉",
					UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(199.00)),
					Quantity:    2,
					TotalPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(398.00)),
				},
			},
		},
		{
			OrderNo: "FM-SEED-0002",
			Items: []models.OrderItem{
				{
					ProductName: "体态评估报告",
					UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(299.00)),
					Quantity:    1,
					TotalPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(299.00)),
				},
			},
		},
	}

	for _, plan := range orders {
		var existing models.Order
		if err := models.DB.Where("order_no = ?", plan.OrderNo).First(&existing).Error; err == nil {
			stdLog.Printf("Order already exists: %s", plan.OrderNo)
			continue
		}

		total := decimal.Zero
		for _, item := range plan.Items {
			total = total.Add(item.TotalPrice.Decimal)
		}
		order := models.Order{
			OrderNo:     plan.OrderNo,
			TrainerID:   trainerID,
			ClientID:    clientID,
			Status:      constants.OrderStatusPaid,
			Currency:    "CNY",
			TotalAmount: models.NewMoneyFromDecimal(total),
			PaidAt:      &paidAt,
			Items:       plan.Items,
		}
		if err := models.DB.Create(&order).Error; err != nil {
			stdLog.Printf("Failed to create order %s: %v", plan.OrderNo, err)
			continue
		}
		stdLog.Printf("Created order: %s (%d items)", plan.OrderNo, len(order.Items))

		// 为每个订单项登记一条交付记录
		scheduled := now.AddDate(0, 0, 3)
		for _, item := range order.Items {
			record := models.DeliveryRecord{
				OrderID:       order.ID,
				OrderItemID:   item.ID,
				TrainerID:     trainerID,
				ClientID:      clientID,
				ProductID:     item.ProductID,
				ProductName:   item.ProductName,
				Quantity:      item.Quantity,
				Status:        constants.DeliveryStatusPending,
				ScheduledDate: &scheduled,
			}
			if err := models.DB.Create(&record).Error; err != nil {
				stdLog.Printf("Failed to create delivery record for item %d: %v", item.ID, err)
				continue
			}
			stdLog.Printf("Created delivery record #%d for %s", record.ID, item.ProductName)
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 1 Manager (manager / manager123, change it)")
	fmt.Println("- 2 Users (trainer@fitmarket.dev / client@fitmarket.dev)")
	fmt.Println("- 2 Paid orders with delivery records")
}
