package services

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
)

func TestRecommendRoles_CountInvariant(t *testing.T) {
	for n := 1; n <= 40; n++ {
		roles := RecommendRoles(n)
		if len(roles) != n {
			t.Errorf("RecommendRoles(%d) returned %d roles", n, len(roles))
		}
		wolves := 0
		for _, r := range roles {
			if TeamOf(r) == models.TeamWerewolves {
				wolves++
			}
		}
		if n >= 5 && (wolves == 0 || wolves*2 >= n) {
			t.Errorf("RecommendRoles(%d) has %d werewolves", n, wolves)
		}
	}
	if got := RecommendRoles(0); len(got) != 0 {
		t.Errorf("RecommendRoles(0) = %v", got)
	}
}

func TestRecommendRoles_FivePlayers(t *testing.T) {
	want := []models.Role{models.Werewolf, models.Werewolf, models.Villager, models.Villager, models.Seer}
	got := RecommendRoles(5)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RecommendRoles(5) = %v, want %v", got, want)
		}
	}
}

func TestRecommendRoles_ReturnsCopy(t *testing.T) {
	got := RecommendRoles(5)
	got[0] = models.Villager
	if RecommendRoles(5)[0] != models.Werewolf {
		t.Error("mutating the result changed the preset")
	}
}

func newPlayers(names ...string) []models.Player {
	players := make([]models.Player, len(names))
	for i, name := range names {
		players[i] = models.Player{ID: name, Name: name, Status: models.StatusAlive}
	}
	return players
}

func sortedRoles(roles []models.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	sort.Strings(out)
	return out
}

func TestAssignRoles_Permutation(t *testing.T) {
	players := newPlayers("a", "b", "c", "d", "e", "f", "g", "h")
	roles := RecommendRoles(len(players))

	for seed := int64(1); seed <= 20; seed++ {
		assigned, err := AssignRoles(players, roles, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("AssignRoles: %v", err)
		}
		got := make([]models.Role, len(assigned))
		for i, p := range assigned {
			if p.ID != players[i].ID {
				t.Fatalf("player order changed at %d", i)
			}
			got[i] = p.Role
		}
		want := sortedRoles(roles)
		have := sortedRoles(got)
		for i := range want {
			if want[i] != have[i] {
				t.Fatalf("seed %d: role multiset changed: %v vs %v", seed, have, want)
			}
		}
	}
	for _, p := range players {
		if p.Role != "" {
			t.Fatal("AssignRoles modified its input")
		}
	}
}

func TestAssignRoles_CountMismatch(t *testing.T) {
	players := newPlayers("a", "b", "c", "d", "e")
	_, err := AssignRoles(players, RecommendRoles(6), rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrRoleCountMismatch) {
		t.Fatalf("expected ErrRoleCountMismatch, got %v", err)
	}
}

func TestRoleSelection_AddAtCapacityDropsVillager(t *testing.T) {
	sel := NewRoleSelection(RecommendRoles(5))
	sel.Add(models.Doctor, 5)

	if sel.Count() != 5 {
		t.Fatalf("count = %d, want 5", sel.Count())
	}
	counts := sel.Counts()
	if counts[models.Villager] != 1 || counts[models.Doctor] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestRoleSelection_AddWithoutVillagerDropsOldest(t *testing.T) {
	sel := NewRoleSelection([]models.Role{models.Werewolf, models.Seer, models.Doctor})
	sel.Add(models.Witch, 3)

	got := sel.Roles()
	want := []models.Role{models.Seer, models.Doctor, models.Witch}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("roles = %v, want %v", got, want)
		}
	}
}

func TestRoleSelection_RemovePadsWithVillager(t *testing.T) {
	sel := NewRoleSelection(RecommendRoles(5))
	if !sel.Remove(models.Seer, 5) {
		t.Fatal("Remove(seer) returned false")
	}
	if sel.Count() != 5 || sel.Counts()[models.Villager] != 3 {
		t.Errorf("unexpected selection %v", sel.Roles())
	}
	if sel.Remove(models.Witch, 5) {
		t.Error("removing an absent role should return false")
	}
}

func TestRoleSelection_Reconcile(t *testing.T) {
	sel := NewRoleSelection(RecommendRoles(8))
	sel.Reconcile(6)
	if sel.Count() != 6 {
		t.Fatalf("count = %d, want 6", sel.Count())
	}
	if sel.Counts()[models.Seer] != 1 || sel.Counts()[models.Werewolf] != 2 {
		t.Errorf("special roles should survive trimming: %v", sel.Roles())
	}

	sel.Reconcile(9)
	if sel.Count() != 9 || sel.Counts()[models.Villager] != 5 {
		t.Errorf("padding should add villagers: %v", sel.Roles())
	}
}
