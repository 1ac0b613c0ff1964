// @title gumusqr menu API
// @version 1.0
// @description Restaurant menu management API: public menu display plus an authenticated admin panel.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/gumusqr/backend/internal/client"
	"github.com/gumusqr/backend/internal/config"
	"github.com/gumusqr/backend/internal/db"
	"github.com/gumusqr/backend/internal/handler"
	"github.com/gumusqr/backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	store := &db.Postgres{Pool: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	authService, err := service.NewAuthService(store, cfg.Auth)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	images, err := client.NewCloudinaryClient(cfg.Cloudinary)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}

	catalogService := service.NewCatalogService(store, images)
	settingsService := service.NewSettingsService(store, images)

	authHandler := handler.NewAuthHandler(authService)
	categoryHandler := handler.NewCategoryHandler(catalogService)
	productHandler := handler.NewProductHandler(catalogService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	publicHandler := handler.NewPublicHandler(catalogService, settingsService)

	router := gin.Default()
	router.Use(handler.CORSMiddleware(strings.Split(cfg.CORS.AllowedOrigins, ",")))

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)
	router.GET("/openapi.json", handler.OpenAPIDoc)

	api := router.Group("/api/v1")

	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/verify", authHandler.Verify)

	public := api.Group("/public")
	public.GET("/menu", publicHandler.Menu)
	public.GET("/settings", publicHandler.Settings)

	admin := api.Group("")
	admin.Use(handler.AuthMiddleware(authService))
	admin.POST("/auth/change-password", authHandler.ChangePassword)
	admin.GET("/categories", categoryHandler.List)
	admin.POST("/categories", categoryHandler.Create)
	admin.PUT("/categories/:id", categoryHandler.Update)
	admin.DELETE("/categories/:id", categoryHandler.Delete)
	admin.GET("/products", productHandler.List)
	admin.POST("/products", productHandler.Create)
	admin.GET("/products/:id", productHandler.Get)
	admin.PUT("/products/:id", productHandler.Update)
	admin.DELETE("/products/:id", productHandler.Delete)
	admin.GET("/settings", settingsHandler.Get)
	admin.PUT("/settings", settingsHandler.Update)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
