package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Poker/internal/app"
	"github.com/dkeye/Poker/internal/config"
	"github.com/dkeye/Poker/internal/core"
	"github.com/dkeye/Poker/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn adapts one gorilla connection to core.SignalConnection.
// The write pump is the only writer on the socket; TrySend just
// enqueues and reports backpressure.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame
	once sync.Once
}

func (c *wsConn) TrySend(f core.Frame) error {
	select {
	case c.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// EventController terminates websocket clients and dispatches their
// named events to the orchestrator. Each accepted connection gets a
// fresh handle; reconnecting clients reconcile through rejoin-room.
type EventController struct {
	Orch    *app.Orchestrator
	Cfg     *config.Config
	Limiter *EventRateLimiter
}

func NewEventController(orch *app.Orchestrator, cfg *config.Config) *EventController {
	return &EventController{
		Orch:    orch,
		Cfg:     cfg,
		Limiter: NewEventRateLimiter(cfg.EventRateLimit, cfg.EventRateInterval),
	}
}

func (ctl *EventController) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ws").Msg("upgrade failed")
		return
	}

	cid := domain.ClientID(uuid.NewString())
	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	ctl.Orch.Registry.Bind(cid, conn)
	log.Info().Str("module", "adapters.ws").Str("cid", string(cid)).Msg("client connected")

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		ctl.writePump(ctx, conn)
		cancel()
	}()
	go func() {
		ctl.readPump(ctx, cid, conn)
		cancel()
	}()
}

func (ctl *EventController) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Warn().Err(err).Str("module", "adapters.ws").Msg("ping failed")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *EventController) readPump(ctx context.Context, cid domain.ClientID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "adapters.ws").Str("cid", string(cid)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(cid)
		ctl.Orch.Registry.Unbind(cid)
		ctl.Limiter.Forget(cid)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	c.conn.SetPongHandler(func(string) error { return nil })

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Str("module", "adapters.ws").Str("cid", string(cid)).Msg("read error")
				}
				return
			}
			ctl.handleEvent(cid, c, data)
		}
	}
}

func (ctl *EventController) handleEvent(cid domain.ClientID, c *wsConn, data []byte) {
	if !ctl.Limiter.Allow(cid) {
		log.Warn().Str("module", "adapters.ws").Str("cid", string(cid)).Msg("rate limit exceeded, event dropped")
		return
	}

	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "adapters.ws").Str("cid", string(cid)).Msg("bad json")
		return
	}

	switch env.Event {
	case core.EventCreateRoom:
		var d core.CreateRoomData
		if decode(env.Data, &d) {
			ctl.Orch.CreateRoom(cid, c, d)
		}
	case core.EventJoinRoom:
		var d core.JoinRoomData
		if decode(env.Data, &d) {
			ctl.Orch.JoinRoom(cid, c, d)
		}
	case core.EventRejoinRoom:
		var d core.RejoinRoomData
		if decode(env.Data, &d) {
			ctl.Orch.RejoinRoom(cid, c, d)
		}
	case core.EventVote:
		var d core.VoteData
		if decode(env.Data, &d) {
			ctl.Orch.Vote(cid, d)
		}
	case core.EventToggleModeratorVoting:
		var d core.RoomOnlyData
		if decode(env.Data, &d) {
			ctl.Orch.ToggleModeratorVoting(cid, d)
		}
	case core.EventUpdateVotingValues:
		var d core.UpdateVotingValuesData
		if decode(env.Data, &d) {
			ctl.Orch.UpdateVotingValues(cid, d)
		}
	case core.EventRevealVotes:
		var d core.RoomOnlyData
		if decode(env.Data, &d) {
			ctl.Orch.RevealVotes(cid, d)
		}
	case core.EventResetVoting:
		var d core.RoomOnlyData
		if decode(env.Data, &d) {
			ctl.Orch.ResetVoting(cid, d)
		}
	case core.EventPromoteToModerator:
		var d core.TargetUserData
		if decode(env.Data, &d) {
			ctl.Orch.PromoteToModerator(cid, d)
		}
	case core.EventDemoteFromModerator:
		var d core.TargetUserData
		if decode(env.Data, &d) {
			ctl.Orch.DemoteFromModerator(cid, d)
		}
	case core.EventEndRoom:
		var d core.RoomOnlyData
		if decode(env.Data, &d) {
			ctl.Orch.EndRoom(cid, d)
		}
	default:
		log.Warn().Str("module", "adapters.ws").Str("event", env.Event).Msg("unknown event")
	}
}

func decode(raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		log.Warn().Err(err).Str("module", "adapters.ws").Msg("bad event payload")
		return false
	}
	return true
}
