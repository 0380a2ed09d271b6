// Package container wires the whole dependency graph: config first, then
// infrastructure, repositories, services, handlers. Getting the order
// wrong panics at startup, never at request time.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"storefront-backend/internal/config"
	infraCache "storefront-backend/internal/infrastructure/cache"
	"storefront-backend/internal/infrastructure/database"
	"storefront-backend/internal/infrastructure/storage"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/jwt"
	"storefront-backend/pkg/logger"

	cartHandler "storefront-backend/internal/domains/cart/handler"
	cartRepo "storefront-backend/internal/domains/cart/repository"
	cartService "storefront-backend/internal/domains/cart/service"
	categoryHandler "storefront-backend/internal/domains/category/handler"
	categoryRepo "storefront-backend/internal/domains/category/repository"
	categoryService "storefront-backend/internal/domains/category/service"
	couponHandler "storefront-backend/internal/domains/coupon/handler"
	couponRepo "storefront-backend/internal/domains/coupon/repository"
	couponService "storefront-backend/internal/domains/coupon/service"
	"storefront-backend/internal/domains/order/calculator"
	orderHandler "storefront-backend/internal/domains/order/handler"
	orderRepo "storefront-backend/internal/domains/order/repository"
	orderService "storefront-backend/internal/domains/order/service"
	productHandler "storefront-backend/internal/domains/product/handler"
	productRepo "storefront-backend/internal/domains/product/repository"
	productService "storefront-backend/internal/domains/product/service"
	reviewHandler "storefront-backend/internal/domains/review/handler"
	reviewRepo "storefront-backend/internal/domains/review/repository"
	reviewService "storefront-backend/internal/domains/review/service"
	uploadHandler "storefront-backend/internal/domains/upload/handler"
	userHandler "storefront-backend/internal/domains/user/handler"
	userRepo "storefront-backend/internal/domains/user/repository"
	userService "storefront-backend/internal/domains/user/service"
)

type Container struct {
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Storage     *storage.MinIOStorage
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client

	CategoryRepo categoryRepo.CategoryRepository
	ProductRepo  productRepo.ProductRepository
	ReviewRepo   reviewRepo.ReviewRepository
	UserRepo     userRepo.UserRepository
	CartRepo     cartRepo.CartRepository
	CouponRepo   couponRepo.CouponRepository
	OrderRepo    orderRepo.OrderRepository

	CategoryService categoryService.ServiceInterface
	ProductService  productService.ServiceInterface
	ReviewService   reviewService.ServiceInterface
	UserService     userService.ServiceInterface
	CartService     cartService.ServiceInterface
	CouponService   couponService.ServiceInterface
	OrderService    orderService.ServiceInterface

	CategoryHandler *categoryHandler.CategoryHandler
	ProductHandler  *productHandler.ProductHandler
	ReviewHandler   *reviewHandler.ReviewHandler
	UserHandler     *userHandler.UserHandler
	CartHandler     *cartHandler.CartHandler
	CouponHandler   *couponHandler.CouponHandler
	OrderHandler    *orderHandler.OrderHandler
	UploadHandler   *uploadHandler.UploadHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("config loaded", map[string]interface{}{"environment": cfg.App.Environment})

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = redisCache

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = minioStorage

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Hour,
	)

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Repositories.
	c.CategoryRepo = categoryRepo.NewPostgresRepository(db.Pool)
	c.ProductRepo = productRepo.NewPostgresRepository(db.Pool, c.Cache)
	c.ReviewRepo = reviewRepo.NewPostgresRepository(db.Pool)
	c.UserRepo = userRepo.NewPostgresRepository(db.Pool)
	c.CartRepo = cartRepo.NewPostgresRepository(db.Pool)
	c.CouponRepo = couponRepo.NewPostgresRepository(db.Pool)
	c.OrderRepo = orderRepo.NewPostgresRepository(db.Pool)

	// Services. Coupon comes before cart, cart before order.
	c.CategoryService = categoryService.NewCategoryService(c.CategoryRepo)
	c.ProductService = productService.NewProductService(c.ProductRepo, c.Storage, c.AsynqClient)
	c.ReviewService = reviewService.NewReviewService(c.ReviewRepo, c.ProductRepo)
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.CouponService = couponService.NewCouponService(c.CouponRepo)
	c.CartService = cartService.NewCartService(c.CartRepo, c.ProductRepo, c.CouponService)
	c.OrderService = orderService.NewOrderService(
		db.Pool,
		c.OrderRepo,
		c.CartRepo,
		c.ProductRepo,
		c.CouponService,
		calculator.Rates{
			TaxRate:               cfg.Store.TaxRate,
			FreeShippingThreshold: cfg.Store.FreeShippingThreshold,
			FlatShippingFee:       cfg.Store.FlatShippingFee,
		},
	)

	// Handlers.
	c.CategoryHandler = categoryHandler.NewCategoryHandler(c.CategoryService)
	c.ProductHandler = productHandler.NewProductHandler(c.ProductService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService, c.CartService)
	c.CartHandler = cartHandler.NewCartHandler(c.CartService)
	c.CouponHandler = couponHandler.NewCouponHandler(c.CouponService)
	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
	c.UploadHandler = uploadHandler.NewUploadHandler(c.Storage)

	logger.Info("container initialized", nil)
	return c, nil
}

// Close releases every held connection. Safe to call on a partially built
// container.
func (c *Container) Close() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("failed to close asynq client", err)
		}
	}
	if closer, ok := c.Cache.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
