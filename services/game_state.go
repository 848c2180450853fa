package services

import "github.com/bonmvsk/nightfall-werewolf-moderator/models"

// resetRoleSelection 人数变化后恢复推荐配置
func resetRoleSelection(state *models.GameState) {
	state.SelectedRoles = RecommendRoles(len(state.Players))
	state.CustomRoles = false
}

// resetPlayers 所有玩家复活并清除临时状态，角色保持不变
func resetPlayers(state *models.GameState) {
	for i := range state.Players {
		p := &state.Players[i]
		p.Status = models.StatusAlive
		p.Protected = false
		p.Poisoned = false
		p.Silenced = false
		p.TargetedBy = nil
		p.Revealed = false
	}
}

// startNewGame 清空一局游戏的过程数据
func startNewGame(state *models.GameState) {
	state.Round = 0
	state.CurrentNightRole = ""
	state.NightQueue = nil
	state.NightActions = nil
	state.EliminatedLastNight = nil
	state.Winner = models.NoWinner
	state.SavePotionUsed = false
	state.PoisonPotionUsed = false
	state.WerewolfKills = 1
	state.PendingHunter = ""
	resetTimers(state)
}

// unrevealedCount 还未查看身份的玩家数
func unrevealedCount(state *models.GameState) int {
	n := 0
	for _, p := range state.Players {
		if p.Role == "" || !p.Revealed {
			n++
		}
	}
	return n
}

// remainingCards 牌池中该角色还剩几张，playerID 自己手上的不计入
func remainingCards(state *models.GameState, role models.Role, playerID string) int {
	n := 0
	for _, r := range state.SelectedRoles {
		if r == role {
			n++
		}
	}
	for _, p := range state.Players {
		if p.ID != playerID && p.Role == role {
			n--
		}
	}
	return n
}

// findAlive 查找存活玩家
func findAlive(state *models.GameState, id string) (*models.Player, bool) {
	i := state.FindPlayer(id)
	if i < 0 || !state.Players[i].Alive() {
		return nil, false
	}
	return &state.Players[i], true
}
