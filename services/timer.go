package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
)

// resetTimers 两个计时器都停止并恢复为设置时长
func resetTimers(state *models.GameState) {
	resetTimer(state, models.PhaseDay)
	resetTimer(state, models.PhaseNight)
}

func resetTimer(state *models.GameState, phase models.Phase) {
	switch phase {
	case models.PhaseDay:
		state.Timers.DayActive = false
		state.Timers.DayRemaining = state.Settings.Day
	case models.PhaseNight:
		state.Timers.NightActive = false
		state.Timers.NightRemaining = state.Settings.Night
	}
}

// armTimer 启动一个计时器，另一个暂停并保留剩余时间
func armTimer(state *models.GameState, phase models.Phase, settings models.TimerSettings) {
	switch phase {
	case models.PhaseDay:
		if state.Timers.DayRemaining <= 0 {
			state.Timers.DayRemaining = settings.Day
		}
		state.Timers.DayActive = true
		state.Timers.NightActive = false
	case models.PhaseNight:
		if state.Timers.NightRemaining <= 0 {
			state.Timers.NightRemaining = settings.Night
		}
		state.Timers.NightActive = true
		state.Timers.DayActive = false
	}
}

func checkTimerPhase(phase models.Phase) error {
	if phase != models.PhaseDay && phase != models.PhaseNight {
		return fmt.Errorf("%w: no %q timer", ErrInvalidTimer, phase)
	}
	return nil
}

// StartTimer 启动计时
func (gc *GameController) StartTimer(phase models.Phase) error {
	return gc.apply("start_timer", func(next *models.GameState) ([]models.Event, error) {
		if err := checkTimerPhase(phase); err != nil {
			return nil, err
		}
		armTimer(next, phase, next.Settings)
		return []models.Event{timerEvent(models.EventTimerTick, next)}, nil
	})
}

// StopTimer 暂停计时，保留剩余时间
func (gc *GameController) StopTimer(phase models.Phase) error {
	return gc.apply("stop_timer", func(next *models.GameState) ([]models.Event, error) {
		if err := checkTimerPhase(phase); err != nil {
			return nil, err
		}
		if phase == models.PhaseDay {
			next.Timers.DayActive = false
		} else {
			next.Timers.NightActive = false
		}
		return []models.Event{timerEvent(models.EventTimerTick, next)}, nil
	})
}

// ResetTimer 停止计时并恢复为设置时长
func (gc *GameController) ResetTimer(phase models.Phase) error {
	return gc.apply("reset_timer", func(next *models.GameState) ([]models.Event, error) {
		if err := checkTimerPhase(phase); err != nil {
			return nil, err
		}
		resetTimer(next, phase)
		return []models.Event{timerEvent(models.EventTimerTick, next)}, nil
	})
}

// UpdateTimerSettings 部分更新计时设置，未运行的计时器同步为新时长
func (gc *GameController) UpdateTimerSettings(patch models.TimerSettingsPatch) error {
	return gc.apply("update_timer_settings", func(next *models.GameState) ([]models.Event, error) {
		if patch.Day != nil && *patch.Day <= 0 {
			return nil, fmt.Errorf("%w: day duration must be positive", ErrInvalidTimer)
		}
		if patch.Night != nil && *patch.Night <= 0 {
			return nil, fmt.Errorf("%w: night duration must be positive", ErrInvalidTimer)
		}
		if patch.Day != nil {
			next.Settings.Day = *patch.Day
			if !next.Timers.DayActive {
				next.Timers.DayRemaining = *patch.Day
			}
		}
		if patch.Night != nil {
			next.Settings.Night = *patch.Night
			if !next.Timers.NightActive {
				next.Timers.NightRemaining = *patch.Night
			}
		}
		return []models.Event{timerEvent(models.EventTimerTick, next)}, nil
	})
}

// Tick 正在运行的计时器减一秒；到零时停止并发出提醒，不会切换阶段
func (gc *GameController) Tick() {
	_ = gc.apply("tick", func(next *models.GameState) ([]models.Event, error) {
		var remaining *int
		var active *bool
		var label string
		switch {
		case next.Timers.DayActive:
			remaining, active, label = &next.Timers.DayRemaining, &next.Timers.DayActive, "Day"
		case next.Timers.NightActive:
			remaining, active, label = &next.Timers.NightRemaining, &next.Timers.NightActive, "Night"
		default:
			return nil, nil
		}

		*remaining--
		if *remaining > 0 {
			return []models.Event{timerEvent(models.EventTimerTick, next)}, nil
		}
		*remaining = 0
		*active = false
		log.Printf("[计时] %s 计时结束", label)
		ev := timerEvent(models.EventTimerExpired, next)
		ev.Level = models.LevelWarning
		ev.Message = label + " phase time is up!"
		return []models.Event{ev}, nil
	})
}

// RunClock 每秒调用一次 Tick，直到 ctx 取消
func (gc *GameController) RunClock(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gc.Tick()
		}
	}
}

func timerEvent(eventType string, state *models.GameState) models.Event {
	return models.Event{
		Type: eventType,
		Data: map[string]interface{}{
			"day_remaining":   state.Timers.DayRemaining,
			"night_remaining": state.Timers.NightRemaining,
			"day_active":      state.Timers.DayActive,
			"night_active":    state.Timers.NightActive,
		},
	}
}
