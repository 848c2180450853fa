package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/bonmvsk/nightfall-werewolf-moderator/config"
	"github.com/bonmvsk/nightfall-werewolf-moderator/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 界面与服务运行在同一台设备上
	},
}

// NewServer 创建供界面调用的 HTTP 接口
func NewServer(gc *services.GameController, ws *services.WebSocketManager, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 设置跨域中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WebSocket] 升级连接失败: %v", err)
			return
		}
		ws.RegisterConnection(conn)
	})

	api := r.Group("/api")
	{
		api.GET("/state", NewStateHandler(gc))
		api.GET("/qrcode.png", NewQRCodeHandler(cfg.PublicURL))

		// 角色配置
		api.GET("/roles", NewCatalogHandler())
		api.GET("/roles/recommended", NewRecommendHandler())
		api.POST("/roles/recommended", NewUseRecommendedHandler(gc))
		api.GET("/roles/selection", NewSelectionHandler(gc))
		api.PUT("/roles/selection", NewSetCustomRolesHandler(gc))
		api.POST("/roles/selection/:role", NewEditSelectionHandler(gc, true))
		api.DELETE("/roles/selection/:role", NewEditSelectionHandler(gc, false))

		// 玩家
		api.POST("/players", NewAddPlayerHandler(gc))
		api.DELETE("/players/:id", NewRemovePlayerHandler(gc))
		api.PUT("/players/:id/role", NewUpdateRoleHandler(gc))
		api.POST("/players/:id/reveal", NewRevealHandler(gc))

		// 游戏流程
		api.PUT("/mode", NewSetModeHandler(gc))
		api.POST("/game/start", NewStepHandler(gc, gc.AssignRolesAndStart))
		api.POST("/game/reset", NewStepHandler(gc, func() error {
			gc.ResetGame()
			return nil
		}))
		api.POST("/night/start", NewStepHandler(gc, gc.StartNightPhase))
		api.GET("/night/current", NewCurrentRoleHandler(gc))
		api.POST("/night/actions", NewNightActionHandler(gc))
		api.POST("/night/skip", NewStepHandler(gc, gc.SkipNightRole))
		api.POST("/night/complete", NewStepHandler(gc, gc.CompleteNightPhase))
		api.POST("/day/start", NewStepHandler(gc, gc.StartDayPhase))
		api.POST("/day/eliminate/:id", NewTargetHandler(gc, gc.EliminatePlayer))
		api.POST("/day/hunter/:id", NewTargetHandler(gc, gc.HunterShot))

		// 计时器
		api.POST("/timers/:phase/:command", NewTimerHandler(gc))
		api.PATCH("/timers", NewTimerSettingsHandler(gc))
	}

	return r
}
