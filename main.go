package main

import (
	"context"
	"log"
	"os"

	"slidelab/app"
	"slidelab/cart"
	"slidelab/config"
	"slidelab/db"
	"slidelab/routes"
)

func main() {
	config.LoadEnv()
	application := app.MustNew()
	defer application.Close()

	repo := db.NewRepo(application.DB)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app.BootstrapFirstAdmin(ctx, application.Config, repo)

	// 购物车清扫/刷新任务，随进程退出一起停
	go cart.NewJanitor(repo).Run(ctx)

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
