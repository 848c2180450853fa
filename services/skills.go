package services

import (
	"fmt"
	"log"

	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
)

// checkSkillUse 校验角色技能的使用限制
func checkSkillUse(state *models.GameState, action models.NightAction) error {
	if action.TargetID == "" {
		return nil
	}

	switch action.RoleID {
	case models.Witch:
		// 女巫两瓶药各限用一次
		if action.Kind == models.ActionHeal && state.SavePotionUsed {
			return fmt.Errorf("%w: save potion", ErrPotionUsed)
		}
		if action.Kind == models.ActionPoison && state.PoisonPotionUsed {
			return fmt.Errorf("%w: poison potion", ErrPotionUsed)
		}
	case models.Bodyguard:
		// 守卫不能守护自己
		if p, ok := findAlive(state, action.TargetID); ok && p.Role == models.Bodyguard {
			return fmt.Errorf("%w: the bodyguard cannot protect themself", ErrInvalidTarget)
		}
	}
	return nil
}

// useSkill 记录一次性技能的使用
func useSkill(state *models.GameState, action models.NightAction) {
	if action.RoleID != models.Witch || action.TargetID == "" {
		return
	}
	switch action.Kind {
	case models.ActionHeal:
		state.SavePotionUsed = true
	case models.ActionPoison:
		state.PoisonPotionUsed = true
	}
}

// seerVision 预言家查验结果，只告知阵营
func seerVision(state *models.GameState, targetID string) (models.Event, bool) {
	i := state.FindPlayer(targetID)
	if i < 0 {
		return models.Event{}, false
	}
	target := state.Players[i]
	return models.Event{
		Type: models.EventSeerVision,
		Data: map[string]interface{}{
			"player_id": target.ID,
			"name":      target.Name,
			"team":      TeamOf(target.Role),
		},
	}, true
}

// afterEliminations 处理出局触发的技能：小狼死亡下晚狼人多杀一人，猎人可以开枪
func afterEliminations(state *models.GameState, eliminated []string) []models.Event {
	var events []models.Event
	for _, id := range eliminated {
		i := state.FindPlayer(id)
		if i < 0 {
			continue
		}
		p := state.Players[i]
		switch p.Role {
		case models.WolfCub:
			state.WerewolfKills = 2
			events = append(events, models.Event{
				Type:    models.EventNotice,
				Level:   models.LevelWarning,
				Message: "The Wolf Cub has fallen. The werewolves will strike twice next night.",
			})
		case models.Hunter:
			state.PendingHunter = p.ID
			events = append(events, models.Event{
				Type:    models.EventNotice,
				Level:   models.LevelInfo,
				Message: "The Hunter can eliminate one more player before dying",
				Data:    map[string]interface{}{"player_id": p.ID},
			})
		}
	}
	return events
}

// nightQueue 生成今晚的行动队列，狼人额外的击杀排在狼人之后
func nightQueue(state *models.GameState) []models.Role {
	order := NightActionOrder(AliveRoles(state.Players))
	extra := state.WerewolfKills - 1
	if extra <= 0 {
		return order
	}

	if indexOfRole(order, models.Werewolf) < 0 {
		log.Printf("[夜晚] 没有存活的狼人, 小狼的额外击杀作废")
		return order
	}

	queue := make([]models.Role, 0, len(order)+extra)
	for _, role := range order {
		queue = append(queue, role)
		if role == models.Werewolf {
			for i := 0; i < extra; i++ {
				queue = append(queue, models.Werewolf)
			}
		}
	}
	return queue
}
