package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"greenmarket/docs"

	"greenmarket/internal/auth"
	"greenmarket/internal/cache"
	"greenmarket/internal/config"
	"greenmarket/internal/db"
	"greenmarket/internal/handler"
	"greenmarket/internal/middleware"
	"greenmarket/internal/model"
	"greenmarket/internal/repository"
	"greenmarket/internal/router"
	"greenmarket/internal/service"
)

// @title GreenMarket API
// @version 1.0
// @description Campus donation marketplace API with JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.HideBanner = true

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.ItemImage{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	itemRepo := repository.NewItemRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, cfg.EmailPattern)
	userService := service.NewUserService(userRepo, cacheClient)
	itemService := service.NewItemService(itemRepo)

	// Initialize handlers and middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, userService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	itemHandler := handler.NewItemHandler(itemService)

	// Register routes
	router.Register(e, cfg, authMiddleware, authHandler, userHandler, itemHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
