package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bonmvsk/nightfall-werewolf-moderator/config"
	"github.com/bonmvsk/nightfall-werewolf-moderator/server"
	"github.com/bonmvsk/nightfall-werewolf-moderator/services"
)

func main() {
	// 设置日志格式，包含文件名和行号
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	webSocketMgr := services.NewWebSocketManager(nil)
	webSocketMgr.SetDebug(cfg.Debug)

	opts := []services.Option{
		services.WithNotifier(webSocketMgr),
		services.WithTimerSettings(cfg.Timers),
		services.WithMinPlayers(cfg.MinPlayers),
	}
	if cfg.Seed != 0 {
		opts = append(opts, services.WithRand(rand.New(rand.NewSource(cfg.Seed))))
	}
	gameController := services.NewGameController(opts...)
	webSocketMgr.SetGameController(gameController)

	log.Printf("初始化完成: 白天%d秒, 夜晚%d秒, 最少%d人", cfg.Timers.Day, cfg.Timers.Night, cfg.MinPlayers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go gameController.RunClock(ctx)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.NewServer(gameController, webSocketMgr, cfg),
	}

	go func() {
		log.Printf("服务器启动在 %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("正在关闭服务器...")

	webSocketMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务器关闭失败: %v", err)
	}
}
