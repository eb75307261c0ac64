package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fitmarket-next/internal/authz"
	"github.com/fitmarket-next/internal/cache"
	"github.com/fitmarket-next/internal/config"
	adminhandlers "github.com/fitmarket-next/internal/http/handlers/admin"
	publichandlers "github.com/fitmarket-next/internal/http/handlers/public"
	"github.com/fitmarket-next/internal/http/response"
	"github.com/fitmarket-next/internal/logger"
	"github.com/fitmarket-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按用户侧/管理端分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "fm"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_frequent",
	}
	managerLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:manager_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_frequent",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.UserProfile)
			user.PUT("/me/profile", publicHandler.UserUpdateProfile)
			user.PUT("/me/password", publicHandler.UserChangePassword)

			// 教练侧交付接口
			trainer := user.Group("/trainer")
			{
				trainer.GET("/deliveries", publicHandler.TrainerDeliveryList)
				trainer.GET("/deliveries/pending", publicHandler.TrainerDeliveryPending)
				trainer.GET("/deliveries/stats", publicHandler.TrainerDeliveryStats)
				trainer.GET("/deliveries/badge", publicHandler.TrainerDeliveryBadge)
				trainer.GET("/deliveries/:id", publicHandler.TrainerDeliveryDetail)
				trainer.POST("/deliveries/:id/ready", publicHandler.TrainerMarkReady)
				trainer.POST("/deliveries/:id/delivered", publicHandler.TrainerMarkDelivered)
				trainer.POST("/deliveries/:id/reschedule/approve", publicHandler.TrainerApproveReschedule)
				trainer.POST("/deliveries/:id/reschedule/reject", publicHandler.TrainerRejectReschedule)
			}

			// 客户侧交付接口
			client := user.Group("/client")
			{
				client.GET("/deliveries", publicHandler.ClientDeliveryList)
				client.GET("/deliveries/badge", publicHandler.ClientDeliveryBadge)
				client.GET("/deliveries/unacknowledged", publicHandler.ClientUnacknowledgedDeliveries)
				client.POST("/deliveries/acknowledge", publicHandler.ClientAcknowledgeDeliveries)
				client.GET("/deliveries/:id", publicHandler.ClientDeliveryDetail)
				client.POST("/deliveries/:id/confirm", publicHandler.ClientConfirmReceipt)
				client.POST("/deliveries/:id/dispute", publicHandler.ClientReportIssue)
				client.POST("/deliveries/:id/reschedule", publicHandler.ClientRequestReschedule)
			}
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, managerLoginRule, KeyByIP), adminHandler.ManagerLogin)

			// 需要鉴权的接口
			authorized := admin.Use(ManagerJWTAuthMiddleware(cfg.JWT.SecretKey, c.ManagerRepo), ManagerRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetManagerProfile)
				authorized.PUT("/password", adminHandler.ManagerChangePassword)

				// 交付管理
				authorized.GET("/deliveries", adminHandler.ListAdminDeliveries)
				authorized.GET("/deliveries/:id", adminHandler.GetAdminDelivery)
				authorized.GET("/disputes", adminHandler.ListAdminDisputes)

				// 订单管理
				authorized.GET("/orders", adminHandler.ListAdminOrders)
				authorized.GET("/orders/:id", adminHandler.GetAdminOrder)
				authorized.POST("/orders/:id/deliveries", adminHandler.RegisterOrderDeliveries)

				// 用户管理
				authorized.GET("/users", adminHandler.ListAdminUsers)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/managers", adminHandler.ListAuthzManagers)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildManagerPermissionCatalog(r))
				})
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.PUT("/authz/managers/:id/roles", adminHandler.SetAuthzManagerRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type managerPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildManagerPermissionCatalog(engine *gin.Engine) []managerPermissionCatalogItem {
	if engine == nil {
		return []managerPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]managerPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, managerPermissionCatalogItem{
			Module:     deriveManagerPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveManagerPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
