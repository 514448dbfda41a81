// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/apiserver/auth"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/apiserver/server"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/config"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/mailer"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/objstore"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/storage/mongostore"
	"github.com/khushbooKanha0301/Middn-Admin-BE/internal/shared/throttle"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 YAML）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// 初始化 MongoDB（业务数据）
	store, err := mongostore.NewStore(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 节流状态存储：配置了 Redis 用 Redis，否则退化为进程内存
	var throttleStore throttle.Store
	if cfg.RedisURL != "" {
		rs, err := throttle.NewRedisStoreFromURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rs.Close()
		throttleStore = rs
		log.Println("Connected to Redis")
	} else {
		throttleStore = throttle.NewMemoryStore()
		log.Println("Redis disabled, using in-memory throttle store")
	}
	guard := throttle.NewGuard(throttleStore, cfg.Throttle.Window)

	// 对象存储（头像与 KYC 证件）
	objects, err := objstore.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("Failed to create MinIO client: %v", err)
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := objects.EnsureBucket(ctx); err != nil {
			log.Printf("MinIO bucket check failed: %v", err)
		}
		cancel()
	}

	// 邮件
	var mail mailer.Mailer
	if m, err := mailer.New(cfg.Mail); err != nil {
		log.Printf("Mailer disabled: %v", err)
		mail = mailer.NoOpMailer{}
	} else {
		mail = m
	}

	// 引导管理员账号
	authCfg := auth.DefaultConfig(cfg.JWTSecret)
	if err := auth.EnsureAdmin(store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	h := server.NewHandler(store, guard, objects, mail, authCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
