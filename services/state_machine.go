package services

import (
	"fmt"
	"log"

	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
)

// StartNightPhase 进入夜晚。
// 从身份查看阶段进入时要求所有人都已查看身份；从白天进入时清空上一晚的行动记录。
func (gc *GameController) StartNightPhase() error {
	return gc.apply("start_night", func(next *models.GameState) ([]models.Event, error) {
		switch next.Phase {
		case models.PhaseRoleReveal:
			if unrevealedCount(next) > 0 {
				return nil, fmt.Errorf("%w: %d player(s) left", ErrRolesNotRevealed, unrevealedCount(next))
			}
		case models.PhaseDay:
		default:
			return nil, fmt.Errorf("start night: %w", ErrWrongPhase)
		}

		next.Phase = models.PhaseNight
		next.Round++
		next.NightActions = make([]models.NightAction, 0)
		next.PendingHunter = ""
		// 禁言只持续到入夜
		for i := range next.Players {
			next.Players[i].Silenced = false
		}
		next.NightQueue = nightQueue(next)
		next.CurrentNightRole = headOf(next.NightQueue)
		resetTimer(next, models.PhaseNight)
		next.Timers.DayActive = false

		log.Printf("[夜晚] 第%d晚, 行动顺序: %v", next.Round, next.NightQueue)
		events := []models.Event{
			{Type: models.EventNotice, Level: models.LevelInfo, Message: "Night falls on the village..."},
			phaseChangedEvent(next),
		}
		if len(next.NightQueue) == 0 {
			events = append(events, completeNight(next)...)
		}
		return events, nil
	})
}

// CurrentNightRole 当前应当行动的角色，没有则返回空
func (gc *GameController) CurrentNightRole() models.Role {
	gc.mutex.Lock()
	defer gc.mutex.Unlock()

	if gc.game.Phase != models.PhaseNight {
		return ""
	}
	return gc.game.CurrentNightRole
}

// PerformNightAction 记录当前角色的行动。Kind 为零值时使用角色默认行动，
// TargetID 为空等同于放弃。最后一个角色行动后自动结算。
func (gc *GameController) PerformNightAction(action models.NightAction) error {
	return gc.apply("night_action", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseNight {
			return nil, fmt.Errorf("night action: %w", ErrWrongPhase)
		}
		if len(next.NightQueue) == 0 {
			return nil, ErrNoPendingRole
		}
		if action.RoleID != next.NightQueue[0] {
			return nil, fmt.Errorf("%w: expected %s, got %s", ErrNotYourTurn, next.NightQueue[0], action.RoleID)
		}
		if action.Kind == 0 {
			action.Kind, _ = DefaultAction(action.RoleID)
		}
		if !roleAllows(action.RoleID, action.Kind) {
			return nil, fmt.Errorf("%w: %s cannot %s", ErrInvalidAction, action.RoleID, action.Kind)
		}
		if err := checkSkillUse(next, action); err != nil {
			return nil, err
		}
		if action.RoleName == "" {
			action.RoleName = RoleName(action.RoleID)
		}

		useSkill(next, action)
		next.NightActions = append(next.NightActions, action)
		events := []models.Event{{
			Type:    models.EventNightAction,
			Level:   models.LevelInfo,
			Message: action.RoleName + " action completed",
			Data:    map[string]interface{}{"role": action.RoleID, "kind": action.Kind.String()},
		}}
		if action.RoleID == models.Seer {
			if ev, ok := seerVision(next, action.TargetID); ok {
				events = append(events, ev)
			}
		}

		return append(events, advanceNightQueue(next)...), nil
	})
}

// SkipNightRole 当前角色不行动
func (gc *GameController) SkipNightRole() error {
	return gc.apply("skip_night_role", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseNight {
			return nil, fmt.Errorf("skip role: %w", ErrWrongPhase)
		}
		if len(next.NightQueue) == 0 {
			return nil, ErrNoPendingRole
		}
		skipped := next.NightQueue[0]
		events := []models.Event{{
			Type: models.EventNightAction,
			Data: map[string]interface{}{"role": skipped, "skipped": true},
		}}
		return append(events, advanceNightQueue(next)...), nil
	})
}

// CompleteNightPhase 立即结算今晚，尚未行动的角色视为放弃
func (gc *GameController) CompleteNightPhase() error {
	return gc.apply("complete_night", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseNight {
			return nil, fmt.Errorf("complete night: %w", ErrWrongPhase)
		}
		return completeNight(next), nil
	})
}

// StartDayPhase 白天开始讨论，启动白天计时
func (gc *GameController) StartDayPhase() error {
	return gc.apply("start_day", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseDay {
			return nil, fmt.Errorf("start day: %w", ErrWrongPhase)
		}
		armTimer(next, models.PhaseDay, next.Settings)
		return []models.Event{{
			Type:    models.EventNotice,
			Level:   models.LevelInfo,
			Message: "The village awakens. Discuss and vote.",
		}}, nil
	})
}

// EliminatePlayer 白天投票放逐，立即生效
func (gc *GameController) EliminatePlayer(playerID string) error {
	return gc.apply("eliminate_player", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseDay {
			return nil, fmt.Errorf("eliminate: %w", ErrWrongPhase)
		}
		i := next.FindPlayer(playerID)
		if i < 0 {
			return nil, ErrPlayerNotFound
		}
		if !next.Players[i].Alive() {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotAlive, next.Players[i].Name)
		}
		next.Players[i].Status = models.StatusDead

		events := []models.Event{{
			Type:    models.EventEliminated,
			Level:   models.LevelWarning,
			Message: next.Players[i].Name + " has been eliminated by the village",
			Data:    map[string]interface{}{"player_id": playerID, "cause": "vote"},
		}}
		events = append(events, afterEliminations(next, []string{playerID})...)
		return append(events, checkGameEnd(next)...), nil
	})
}

// HunterShot 出局的猎人带走一名玩家
func (gc *GameController) HunterShot(targetID string) error {
	return gc.apply("hunter_shot", func(next *models.GameState) ([]models.Event, error) {
		if next.Phase != models.PhaseDay {
			return nil, fmt.Errorf("hunter shot: %w", ErrWrongPhase)
		}
		if next.PendingHunter == "" {
			return nil, ErrNoPendingShot
		}
		if targetID == next.PendingHunter {
			return nil, fmt.Errorf("%w: the hunter cannot shoot themself", ErrInvalidTarget)
		}
		i := next.FindPlayer(targetID)
		if i < 0 {
			return nil, ErrPlayerNotFound
		}
		if !next.Players[i].Alive() {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotAlive, next.Players[i].Name)
		}
		next.Players[i].Status = models.StatusDead
		next.PendingHunter = ""

		events := []models.Event{{
			Type:    models.EventEliminated,
			Level:   models.LevelWarning,
			Message: next.Players[i].Name + " was shot by the Hunter",
			Data:    map[string]interface{}{"player_id": targetID, "cause": "hunter"},
		}}
		events = append(events, afterEliminations(next, []string{targetID})...)
		return append(events, checkGameEnd(next)...), nil
	})
}

// advanceNightQueue 当前角色出队，队列空时结算
func advanceNightQueue(next *models.GameState) []models.Event {
	next.NightQueue = next.NightQueue[1:]
	next.CurrentNightRole = headOf(next.NightQueue)
	if len(next.NightQueue) > 0 {
		return nil
	}
	return completeNight(next)
}

// completeNight 结算今晚并判断胜负，只在夜晚阶段调用一次
func completeNight(next *models.GameState) []models.Event {
	res := ResolveNight(next.Players, next.NightActions)
	next.Players = res.Players
	next.EliminatedLastNight = res.Eliminated
	next.NightQueue = nil
	next.CurrentNightRole = ""
	next.Timers.NightActive = false
	next.WerewolfKills = 1

	log.Printf("[夜晚] 第%d晚结算完成, 出局: %v", next.Round, res.Eliminated)

	next.Phase = models.PhaseDay
	events := []models.Event{{
		Type:    models.EventNightResolved,
		Level:   models.LevelInfo,
		Message: "Night phase is complete. The village awakens...",
		Data: map[string]interface{}{
			"eliminated": res.Eliminated,
			"silenced":   res.Silenced,
		},
	}}
	events = append(events, afterEliminations(next, res.Eliminated)...)
	if end := checkGameEnd(next); len(end) > 0 {
		return append(events, end...)
	}
	return append(events, phaseChangedEvent(next))
}

// checkGameEnd 决出胜负时直接进入结果阶段
func checkGameEnd(next *models.GameState) []models.Event {
	winner := CheckWinCondition(next.Players)
	if winner == models.NoWinner {
		return nil
	}
	next.Phase = models.PhaseResult
	next.Winner = winner
	next.PendingHunter = ""
	next.Timers.DayActive = false
	next.Timers.NightActive = false

	log.Printf("[游戏结束] 获胜阵营: %s", winner)
	return []models.Event{
		{
			Type:    models.EventGameOver,
			Level:   models.LevelSuccess,
			Message: fmt.Sprintf("The %s win!", winner),
			Data:    map[string]interface{}{"winner": winner},
		},
		phaseChangedEvent(next),
	}
}

func headOf(queue []models.Role) models.Role {
	if len(queue) == 0 {
		return ""
	}
	return queue[0]
}
