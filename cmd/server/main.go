package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/aprizalabyan/shop-api/internal/config"
	"github.com/aprizalabyan/shop-api/internal/database"
	"github.com/aprizalabyan/shop-api/internal/handler"
	"github.com/aprizalabyan/shop-api/internal/repository"
	"github.com/aprizalabyan/shop-api/internal/router"
	"github.com/aprizalabyan/shop-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	client, db, err := database.Connect(cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatalf("mongodb connect: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.EnsureIndexes(ctx, db); err != nil {
			log.Fatalf("ensure indexes: %v", err)
		}
	}

	// Repositories own collection access; services and handlers receive
	// their dependencies explicitly so nothing reaches for global state.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	products := repository.NewProductRepo(db)
	reviews := repository.NewReviewRepo(db)

	auth := service.NewAuthService(users, tokens, cfg.JWTSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)
	rating := service.NewRatingService(reviews, products)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e, cfg, users, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, auth),
		Users:    handler.NewUserHandler(cfg, users),
		Products: handler.NewProductHandler(cfg, products),
		Reviews:  handler.NewReviewHandler(cfg, reviews, products, rating),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
