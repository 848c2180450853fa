package services

import (
	"sort"

	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
)

// NightActionOrder 返回今晚需要行动的角色顺序。
// 只包含有夜晚行动且在 present 中出现的角色，按优先级升序，同优先级保持目录顺序。
func NightActionOrder(present []models.Role) []models.Role {
	inGame := make(map[models.Role]bool, len(present))
	for _, r := range present {
		inGame[r] = true
	}

	order := make([]models.Role, 0)
	for _, def := range catalog {
		if def.HasNightAction() && inGame[def.ID] {
			order = append(order, def.ID)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		pi, _ := NightPriority(order[i])
		pj, _ := NightPriority(order[j])
		return pi < pj
	})
	return order
}

// AliveRoles 存活玩家持有的角色
func AliveRoles(players []models.Player) []models.Role {
	roles := make([]models.Role, 0, len(players))
	for _, p := range players {
		if p.Alive() && p.Role != "" {
			roles = append(roles, p.Role)
		}
	}
	return roles
}
