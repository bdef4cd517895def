package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"metro-routing/algo"
	"metro-routing/config"
	"metro-routing/db"
	"metro-routing/handler"
	"metro-routing/model"
	"metro-routing/sparql"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yml", "配置文件路径")
	importFacts := flag.Bool("import-facts", false, "从 SPARQL 端点导入事实快照到数据库后退出")
	from := flag.String("from", "", "起点站名 (与 -to 一起使用, 在命令行规划路径后退出)")
	to := flag.String("to", "", "终点站名")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	client := sparql.NewClient(cfg.SPARQL, log)

	// 3. 可选的数据库 (用户表与事实快照)
	var (
		users handler.UserStore = db.NewMemoryUserStore()
		store *db.FactStore
	)
	if cfg.Database.Enabled {
		conn, err := db.Open(cfg.Database, log)
		if err != nil {
			log.Fatal("连接数据库失败", zap.Error(err))
		}
		users = db.NewUserRepository(conn)
		store = db.NewFactStore(conn)
	}

	var facts handler.FactSource = client
	if cfg.FactSource == config.FactSourceDatabase {
		facts = store
	}

	switch {
	case *importFacts:
		if store == nil {
			log.Fatal("导入事实快照需要启用数据库")
		}
		if err := runImport(client, store, log); err != nil {
			log.Fatal("导入事实快照失败", zap.Error(err))
		}
		return
	case *from != "" || *to != "":
		if err := runPlan(os.Stdout, facts, *from, *to); err != nil {
			log.Fatal("路径规划失败", zap.Error(err))
		}
		return
	}

	if cfg.Auth.AdminPassword != "" {
		if err := handler.SeedAdmin(context.Background(), users, cfg.Auth.AdminPassword); err != nil {
			log.Fatal("创建管理员失败", zap.Error(err))
		}
	}

	// 4. 初始化 Gin 引擎
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestID(), handler.Logger(log), handler.CORS(cfg.Server.AllowedOrigins))

	// 5. 配置路由
	setupRoutes(r, cfg, client, facts, users, log)

	// 6. 启动服务器
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("服务器启动中",
		zap.String("addr", addr),
		zap.String("sparql_endpoint", client.Endpoint()),
		zap.String("fact_source", cfg.FactSource),
		zap.Bool("database", cfg.Database.Enabled))

	if err := r.Run(addr); err != nil {
		log.Fatal("服务器启动失败", zap.Error(err))
	}
}

// newLogger 开发模式输出可读日志, 否则输出 JSON
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// setupRoutes 配置路由
func setupRoutes(r *gin.Engine, cfg *config.Config, client *sparql.Client, facts handler.FactSource, users handler.UserStore, log *zap.Logger) {
	auth := handler.NewAuthHandler(users, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour, log)
	routes := handler.NewRouteHandler(facts, log)
	catalog := handler.NewCatalogHandler(client, cfg.Cache.Size, time.Duration(cfg.Cache.TTLSeconds)*time.Second, log)
	query := handler.NewQueryHandler(client, log)

	// 静态文件服务 - 提供前端页面
	if cfg.Server.StaticDir != "" {
		r.Static("/static", cfg.Server.StaticDir)
		r.GET("/", func(c *gin.Context) {
			c.Redirect(302, "/static/index.html")
		})
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "ok",
		})
	})

	api := r.Group("/api")
	{
		api.POST("/login", auth.Login)
		api.POST("/register", auth.Register)

		// 路径规划
		api.GET("/route", routes.GetRoute)
		api.POST("/route", routes.PostRoute)

		// 站点与线路目录
		api.GET("/stations", catalog.GetStations)
		api.GET("/stations/search", catalog.SearchStations)
		api.GET("/stations/nearest", catalog.NearestStation)
		api.GET("/station/*id", catalog.GetStation)
		api.GET("/lines", catalog.GetLines)
		api.GET("/line/:code", catalog.GetLine)
		api.GET("/line-geometries", catalog.GetLineGeometries)
		api.GET("/examples", catalog.GetExamples)

		api.GET("/health", query.Health)
		if cfg.Auth.ProtectQuery {
			api.POST("/query", auth.AuthMiddleware(), handler.RequireRole(model.RoleQuery), query.Query)
		} else {
			api.POST("/query", query.Query)
		}
	}
}

// runImport 把 SPARQL 端点的网络事实保存为数据库快照
func runImport(client *sparql.Client, store *db.FactStore, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	facts, err := client.FetchNetworkFacts(ctx)
	if err != nil {
		return err
	}
	n, err := store.ImportFacts(ctx, facts)
	if err != nil {
		return err
	}
	log.Info("事实快照导入完成", zap.Int("imported", n), zap.Int("fetched", len(facts)))
	return nil
}

// runPlan 在命令行规划一条路径并打印
// 起点/终点不存在时只打印原因, 不打印 "No route found"
func runPlan(w io.Writer, facts handler.FactSource, from, to string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	list, err := facts.FetchNetworkFacts(ctx)
	if err != nil {
		return err
	}
	g := algo.BuildGraph(list)
	fmt.Fprintf(w, "地图加载成功! 站点数: %d, 线路数: %d\n", len(g.Stations()), len(g.Lines()))

	route, err := g.FindRoute(from, to)
	switch {
	case errors.Is(err, algo.ErrUnknownOrigin):
		fmt.Fprintf(w, "Origin station '%s' not found\n", from)
	case errors.Is(err, algo.ErrUnknownDestination):
		fmt.Fprintf(w, "Destination station '%s' not found\n", to)
	default:
		fmt.Fprint(w, algo.FormatRoute(route))
	}
	return nil
}
