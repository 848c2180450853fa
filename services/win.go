package services

import "github.com/bonmvsk/nightfall-werewolf-moderator/models"

// CheckWinCondition 判断胜负。
// 只统计存活且已分配角色的玩家：狼人数量大于等于好人数量时狼人胜，狼人全部出局时村民胜。
func CheckWinCondition(players []models.Player) models.Winner {
	werewolfCount := 0
	villagerCount := 0
	for _, p := range players {
		if !p.Alive() || p.Role == "" {
			continue
		}
		if TeamOf(p.Role) == models.TeamWerewolves {
			werewolfCount++
		} else {
			villagerCount++
		}
	}

	if werewolfCount >= villagerCount {
		return models.WerewolvesWin
	}
	if werewolfCount == 0 {
		return models.VillagersWin
	}
	return models.NoWinner
}
