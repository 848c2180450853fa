package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
	"github.com/bonmvsk/nightfall-werewolf-moderator/services"
)

// maxRecommendCount 推荐配置接口接受的最大人数
const maxRecommendCount = 100

// statusFor 把引擎错误映射为 HTTP 状态码
func statusFor(err error) int {
	switch {
	case services.IsLookupMiss(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrWrongPhase):
		return http.StatusConflict
	case services.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func respondState(c *gin.Context, gc *services.GameController) {
	c.JSON(http.StatusOK, gc.Snapshot())
}

// NewStateHandler 返回完整游戏状态
func NewStateHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		respondState(c, gc)
	}
}

// NewStepHandler 执行无参数的流程操作
func NewStepHandler(gc *services.GameController, step func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := step(); err != nil {
			abortWithError(c, err)
			return
		}
		respondState(c, gc)
	}
}

// NewTargetHandler 执行以路径中玩家ID为目标的操作
func NewTargetHandler(gc *services.GameController, op func(id string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := op(c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		respondState(c, gc)
	}
}

// NewCatalogHandler 返回角色目录
func NewCatalogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"roles": services.AllRoles()})
	}
}

// NewRecommendHandler 按人数返回推荐角色
func NewRecommendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := strconv.Atoi(c.Query("count"))
		if err != nil || count < 0 || count > maxRecommendCount {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("count must be between 0 and %d", maxRecommendCount)})
			return
		}
		c.JSON(http.StatusOK, gin.H{"roles": services.RecommendRoles(count)})
	}
}

// NewUseRecommendedHandler 恢复推荐配置
func NewUseRecommendedHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := gc.UseRecommendedRoles(); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gc.RoleSelection())
	}
}

// NewSelectionHandler 返回当前角色选择及数量
func NewSelectionHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gc.RoleSelection())
	}
}

// NewSetCustomRolesHandler 整体替换角色选择
func NewSetCustomRolesHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Roles []models.Role `json:"roles" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := gc.SetCustomRoles(req.Roles); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gc.RoleSelection())
	}
}

// NewEditSelectionHandler 增加或移除一个角色
func NewEditSelectionHandler(gc *services.GameController, add bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(c.Param("role"))
		var err error
		if add {
			err = gc.AddSelectedRole(role)
		} else {
			err = gc.RemoveSelectedRole(role)
		}
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gc.RoleSelection())
	}
}

// NewAddPlayerHandler 添加玩家
func NewAddPlayerHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		player, err := gc.AddPlayer(req.Name)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, player)
	}
}

// NewRemovePlayerHandler 移除玩家
func NewRemovePlayerHandler(gc *services.GameController) gin.HandlerFunc {
	return NewTargetHandler(gc, gc.RemovePlayer)
}

// NewUpdateRoleHandler 直接设置玩家角色
func NewUpdateRoleHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Role models.Role `json:"role" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := gc.UpdatePlayerRole(c.Param("id"), req.Role); err != nil {
			abortWithError(c, err)
			return
		}
		respondState(c, gc)
	}
}

// NewRevealHandler 玩家查看自己的身份
func NewRevealHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := gc.RevealRole(c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		def, _ := services.LookupRole(role)
		c.JSON(http.StatusOK, gin.H{"role": def})
	}
}

// NewSetModeHandler 设置游戏模式
func NewSetModeHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Mode models.GameMode `json:"mode" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := gc.SetGameMode(req.Mode); err != nil {
			abortWithError(c, err)
			return
		}
		respondState(c, gc)
	}
}

// NewCurrentRoleHandler 当前行动的角色及其可选行动
func NewCurrentRoleHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := gc.CurrentNightRole()
		if role == "" {
			c.JSON(http.StatusOK, gin.H{"role": nil})
			return
		}
		def, _ := services.LookupRole(role)
		c.JSON(http.StatusOK, gin.H{"role": def, "actions": services.RoleActions(role)})
	}
}

// NewNightActionHandler 提交当前角色的夜晚行动
func NewNightActionHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		var action models.NightAction
		if err := c.ShouldBindJSON(&action); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := gc.PerformNightAction(action); err != nil {
			abortWithError(c, err)
			return
		}
		respondState(c, gc)
	}
}

// NewTimerHandler 启动、暂停或重置计时器
func NewTimerHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		phase := models.Phase(c.Param("phase"))
		var err error
		switch c.Param("command") {
		case "start":
			err = gc.StartTimer(phase)
		case "stop":
			err = gc.StopTimer(phase)
		case "reset":
			err = gc.ResetTimer(phase)
		default:
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown timer command"})
			return
		}
		if err != nil {
			abortWithError(c, err)
			return
		}
		respondState(c, gc)
	}
}

// NewTimerSettingsHandler 部分更新计时设置
func NewTimerSettingsHandler(gc *services.GameController) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch models.TimerSettingsPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := gc.UpdateTimerSettings(patch); err != nil {
			abortWithError(c, err)
			return
		}
		respondState(c, gc)
	}
}

// NewQRCodeHandler 生成界面地址的二维码
func NewQRCodeHandler(url string) gin.HandlerFunc {
	return func(c *gin.Context) {
		png, err := qrcode.Encode(url, qrcode.Medium, 256)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}
