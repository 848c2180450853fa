package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bonmvsk/nightfall-werewolf-moderator/config"
	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
	"github.com/bonmvsk/nightfall-werewolf-moderator/server"
	"github.com/bonmvsk/nightfall-werewolf-moderator/services"
)

var _ = Describe("Server", func() {
	var ctx context.Context
	var client *resty.Client
	var baseURL string
	var webSocketMgr *services.WebSocketManager

	BeforeEach(func() {
		var cancelFn context.CancelFunc
		ctx, cancelFn = context.WithTimeout(context.Background(), time.Minute)
		DeferCleanup(cancelFn)

		gin.SetMode(gin.TestMode)
		webSocketMgr = services.NewWebSocketManager(nil)
		gameController := services.NewGameController(
			services.WithNotifier(webSocketMgr),
			services.WithRand(rand.New(rand.NewSource(7))),
		)
		webSocketMgr.SetGameController(gameController)

		cfg := &config.Config{PublicURL: "http://localhost:8080", Timers: services.DefaultTimerSettings, MinPlayers: 5}
		httpServer := httptest.NewServer(server.NewServer(gameController, webSocketMgr, cfg))
		DeferCleanup(func() {
			webSocketMgr.CloseAll()
			httpServer.Close()
		})
		baseURL = httpServer.URL

		client = resty.New()
	})

	getState := func() models.GameState {
		var state models.GameState
		resp, err := client.R().SetContext(ctx).SetResult(&state).Get(baseURL + "/api/state")
		Expect(err).ToNot(HaveOccurred(), "fetching the state should not fail")
		Expect(resp.StatusCode()).To(Equal(http.StatusOK))
		return state
	}

	addPlayer := func(name string) models.Player {
		var player models.Player
		resp, err := client.R().SetContext(ctx).
			SetBody(map[string]string{"name": name}).
			SetResult(&player).
			Post(baseURL + "/api/players")
		Expect(err).ToNot(HaveOccurred(), "adding player '%s' should not fail", name)
		Expect(resp.StatusCode()).To(Equal(http.StatusOK), "unexpected status adding player '%s': %s", name, resp.String())
		return player
	}

	post := func(path string, body interface{}) *resty.Response {
		req := client.R().SetContext(ctx)
		if body != nil {
			req = req.SetBody(body)
		}
		resp, err := req.Post(baseURL + path)
		Expect(err).ToNot(HaveOccurred(), "POST %s should not fail", path)
		return resp
	}

	It("plays a five-person game to a werewolf win", func() {
		for _, name := range []string{"Alice", "Bob", "Carol", "Dave", "Eve"} {
			addPlayer(name)
		}

		var selection services.SelectionView
		resp, err := client.R().SetContext(ctx).SetResult(&selection).Get(baseURL + "/api/roles/selection")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode()).To(Equal(http.StatusOK))
		Expect(selection.Count).To(Equal(5), "the recommended selection should match the player count")
		Expect(selection.Counts).To(HaveKeyWithValue(models.Werewolf, 2))

		Expect(post("/api/game/start", nil).StatusCode()).To(Equal(http.StatusOK))

		state := getState()
		Expect(state.Phase).To(Equal(models.PhaseRoleReveal))
		for _, p := range state.Players {
			resp := post(fmt.Sprintf("/api/players/%s/reveal", p.ID), nil)
			Expect(resp.StatusCode()).To(Equal(http.StatusOK), "revealing role for '%s' should succeed", p.Name)
		}

		Expect(post("/api/night/start", nil).StatusCode()).To(Equal(http.StatusOK))

		state = getState()
		Expect(state.Phase).To(Equal(models.PhaseNight))
		Expect(state.NightQueue).To(Equal([]models.Role{models.Seer, models.Werewolf}))

		var villagers []string
		for _, p := range state.Players {
			if p.Role == models.Villager {
				villagers = append(villagers, p.ID)
			}
		}
		Expect(villagers).To(HaveLen(2), "there should be two villagers")

		resp = post("/api/night/actions", map[string]string{"role_id": "seer", "target_id": villagers[0], "kind": "view"})
		Expect(resp.StatusCode()).To(Equal(http.StatusOK), "seer action failed: %s", resp.String())

		resp = post("/api/night/actions", map[string]string{"role_id": "werewolf", "target_id": villagers[1]})
		Expect(resp.StatusCode()).To(Equal(http.StatusOK), "werewolf action failed: %s", resp.String())

		state = getState()
		Expect(state.EliminatedLastNight).To(Equal([]string{villagers[1]}))
		Expect(state.Phase).To(Equal(models.PhaseResult))
		Expect(state.Winner).To(Equal(models.WerewolvesWin))
	})

	It("maps engine errors to status codes", func() {
		addPlayer("Alice")

		resp := post("/api/players", map[string]string{"name": "ALICE"})
		Expect(resp.StatusCode()).To(Equal(http.StatusBadRequest))
		var body map[string]string
		Expect(json.Unmarshal(resp.Body(), &body)).To(Succeed())
		Expect(body["error"]).To(ContainSubstring("already exists"))

		Expect(post("/api/night/start", nil).StatusCode()).To(Equal(http.StatusConflict))
		Expect(post("/api/game/start", nil).StatusCode()).To(Equal(http.StatusBadRequest))

		resp = post("/api/timers/result/start", nil)
		Expect(resp.StatusCode()).To(Equal(http.StatusBadRequest))

		resp, err := client.R().SetContext(ctx).SetBody(map[string]string{"role": "seer"}).Put(baseURL + "/api/players/ghost/role")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode()).To(Equal(http.StatusNotFound))

		resp = post("/api/roles/selection/tanner", nil)
		Expect(resp.StatusCode()).To(Equal(http.StatusBadRequest))
	})

	It("serves the role catalog and recommendations", func() {
		var catalog struct {
			Roles []services.RoleDefinition `json:"roles"`
		}
		resp, err := client.R().SetContext(ctx).SetResult(&catalog).Get(baseURL + "/api/roles")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode()).To(Equal(http.StatusOK))
		Expect(catalog.Roles).To(HaveLen(len(services.AllRoles())))

		var recommended struct {
			Roles []models.Role `json:"roles"`
		}
		resp, err = client.R().SetContext(ctx).SetResult(&recommended).Get(baseURL + "/api/roles/recommended?count=9")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode()).To(Equal(http.StatusOK))
		Expect(recommended.Roles).To(HaveLen(9))

		resp, err = client.R().SetContext(ctx).Get(baseURL + "/api/roles/recommended?count=lots")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode()).To(Equal(http.StatusBadRequest))

		for _, count := range []string{"101", "10000000000", "4611686018427387904"} {
			resp, err = client.R().SetContext(ctx).Get(baseURL + "/api/roles/recommended?count=" + count)
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode()).To(Equal(http.StatusBadRequest), "count=%s should be rejected", count)
		}
	})

	It("updates timer settings", func() {
		resp, err := client.R().SetContext(ctx).SetBody(map[string]int{"day": 90}).Patch(baseURL + "/api/timers")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode()).To(Equal(http.StatusOK))
		Expect(getState().Settings.Day).To(Equal(90))

		Expect(post("/api/timers/day/start", nil).StatusCode()).To(Equal(http.StatusOK))
		Expect(getState().Timers.DayActive).To(BeTrue())
		Expect(post("/api/timers/day/pause", nil).StatusCode()).To(Equal(http.StatusNotFound))
	})

	It("renders the join QR code", func() {
		resp, err := client.R().SetContext(ctx).Get(baseURL + "/api/qrcode.png")
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.StatusCode()).To(Equal(http.StatusOK))
		Expect(resp.Header().Get("Content-Type")).To(Equal("image/png"))
		Expect(resp.Body()).ToNot(BeEmpty())
	})

	It("pushes state over the websocket", func() {
		wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		Expect(err).ToNot(HaveOccurred(), "dialing the websocket should not fail")
		DeferCleanup(conn.Close)

		var msg services.Message
		Expect(conn.ReadJSON(&msg)).To(Succeed())
		Expect(msg.Type).To(Equal("sync"))
		Expect(msg.State).ToNot(BeNil())
		Eventually(webSocketMgr.ConnectionCount).Should(Equal(1))

		addPlayer("Alice")

		Expect(conn.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
		Expect(conn.ReadJSON(&msg)).To(Succeed())
		Expect(msg.Type).To(Equal("event"))
		Expect(msg.Event.Type).To(Equal(models.EventPlayerAdded))
		Expect(msg.State.Players).To(HaveLen(1))
	})
})
