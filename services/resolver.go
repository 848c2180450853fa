package services

import "github.com/bonmvsk/nightfall-werewolf-moderator/models"

// Resolution 一晚的结算结果
type Resolution struct {
	Players    []models.Player `json:"players"`
	Eliminated []string        `json:"eliminated"`
	Silenced   []string        `json:"silenced"`
}

// ResolveNight 结算一晚的全部行动，不修改入参。
//
// 顺序固定：重置临时状态，施加保护，狼人击杀（只认 werewolf 提交的击杀，被保护则无效），女巫毒杀（无视保护），
// 最后把出局名单落到玩家状态上。出局名单按首次加入顺序排列。
func ResolveNight(players []models.Player, actions []models.NightAction) Resolution {
	updated := models.ClonePlayers(players)
	index := make(map[string]int, len(updated))
	for i, p := range updated {
		index[p.ID] = i
	}

	// 找到存活目标；未知或已出局的目标视为无效
	target := func(id string) (*models.Player, bool) {
		if id == "" {
			return nil, false
		}
		i, ok := index[id]
		if !ok || !updated[i].Alive() {
			return nil, false
		}
		return &updated[i], true
	}

	for i := range updated {
		if !updated[i].Alive() {
			continue
		}
		updated[i].Protected = false
		updated[i].Poisoned = false
		updated[i].Silenced = false
		updated[i].TargetedBy = nil
	}

	for _, action := range actions {
		if action.Kind != models.ActionProtect && action.Kind != models.ActionHeal {
			continue
		}
		if p, ok := target(action.TargetID); ok {
			p.Protected = true
		}
	}

	eliminated := make([]string, 0)
	marked := make(map[string]bool)
	eliminate := func(id string) {
		if !marked[id] {
			marked[id] = true
			eliminated = append(eliminated, id)
		}
	}

	for _, action := range actions {
		if action.Kind != models.ActionKill || action.RoleID != models.Werewolf {
			continue
		}
		p, ok := target(action.TargetID)
		if !ok {
			continue
		}
		p.TargetedBy = append(p.TargetedBy, action.RoleID)
		if !p.Protected {
			eliminate(p.ID)
		}
	}

	for _, action := range actions {
		if action.Kind != models.ActionPoison || action.RoleID != models.Witch {
			continue
		}
		if p, ok := target(action.TargetID); ok {
			p.Poisoned = true
			eliminate(p.ID)
		}
	}

	silenced := make([]string, 0)
	for _, action := range actions {
		if action.Kind != models.ActionSilence || action.RoleID != models.Spellcaster {
			continue
		}
		if p, ok := target(action.TargetID); ok && !p.Silenced && !marked[p.ID] {
			p.Silenced = true
			silenced = append(silenced, p.ID)
		}
	}

	for _, id := range eliminated {
		updated[index[id]].Status = models.StatusDead
	}

	return Resolution{
		Players:    updated,
		Eliminated: eliminated,
		Silenced:   silenced,
	}
}
