package app

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"slidelab/db"
	"slidelab/session"
	"slidelab/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Blobs  *storage.ObjectStore // 可能为 nil（没配桶时照片/条码图功能降级）
	Config Config

	appSess *session.AppSessionStore
}

// Config 从环境变量读取
type Config struct {
	RedisAddr  string
	RedisPwd   string
	WebOrigin  string
	SessionTTL time.Duration

	// 外部身份系统换会话用的共享密钥
	AuthExchangeSecret string
	BootstrapEmail     string

	// 购物车策略
	CartTTL      time.Duration
	LoanTerm     time.Duration
	MaxOpenLoans int
	MaxCartItems int

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func MustNew() *App {
	cfg := loadConfig()

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- 对象存储（可选）---
	var blobs *storage.ObjectStore
	if cfg.S3Bucket != "" {
		var err error
		blobs, err = storage.New(ctx, storage.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			log.Fatalf("object store: %v", err)
		}
	} else {
		log.Println("S3_BUCKET not set, photo/barcode uploads disabled")
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Blobs: blobs, Config: cfg,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
	return a
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	getInt := func(k string, def int) int {
		if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
			return n
		}
		return def
	}
	getDur := func(k string, def time.Duration) time.Duration {
		if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
			return d
		}
		return def
	}

	return Config{
		RedisAddr:  get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:   os.Getenv("REDIS_PASSWORD"),
		WebOrigin:  get("WEB_ORIGIN", "http://localhost:5173"),
		SessionTTL: getDur("SESSION_TTL", 24*time.Hour),

		AuthExchangeSecret: os.Getenv("AUTH_EXCHANGE_SECRET"),
		BootstrapEmail:     strings.ToLower(strings.TrimSpace(os.Getenv("BOOTSTRAP_EMAIL"))),

		CartTTL:      getDur("CART_TTL", 24*time.Hour),
		LoanTerm:     getDur("LOAN_TERM", 48*time.Hour),
		MaxOpenLoans: getInt("MAX_OPEN_LOANS", 100),
		MaxCartItems: getInt("MAX_CART_ITEMS", 20),

		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    get("S3_REGION", "us-east-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3PathStyle: strings.EqualFold(os.Getenv("S3_PATH_STYLE"), "true"),
	}
}
