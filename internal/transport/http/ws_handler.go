package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"weapon-quiz-service/internal/app"
	"weapon-quiz-service/internal/domain"
	"weapon-quiz-service/internal/pacing"
)

// Pacing configures the per-connection guess gate.
type Pacing struct {
	Cooldown   time.Duration
	Transition time.Duration
}

type WSHandler struct {
	service  *app.QuizService
	pacing   Pacing
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, pacing Pacing, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		pacing:  pacing,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type guessPayload struct {
	Answer  string   `json:"answer"`
	Answers []string `json:"answers"`
}

type itemPayload struct {
	SessionID  string            `json:"sessionId"`
	Item       domain.PublicItem `json:"item"`
	Progress   domain.Progress   `json:"progress"`
	CooldownMs int64             `json:"cooldownMs"`
}

type resultsPayload struct {
	SessionID string         `json:"sessionId"`
	Results   domain.Results `json:"results"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz session per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	session, err := h.service.Start(ctx)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorBody(err)})
		return
	}

	c := &wsConn{
		handler: h,
		ctx:     ctx,
		session: session,
		gate:    pacing.NewGate(h.pacing.Cooldown, h.pacing.Transition),
		send:    make(chan outboundMessage[any], 16),
		done:    make(chan struct{}),
	}
	// restart swaps c.session, so abandon whichever one is live at disconnect
	defer func() { h.service.Abandon(context.Background(), c.session.ID()) }()
	c.run(conn)
}

// wsConn holds the state of a single player connection.
type wsConn struct {
	handler *WSHandler
	ctx     context.Context
	session *app.Session
	gate    *pacing.Gate
	send    chan outboundMessage[any]
	done    chan struct{}
	advance *time.Timer
}

func (c *wsConn) run(conn *websocket.Conn) {
	go func() {
		defer close(c.done)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				c.handler.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	inbound := make(chan inboundMessage)
	go func() {
		defer close(inbound)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case inbound <- msg:
			case <-c.done:
				return
			}
		}
	}()

	c.showCurrent()

loop:
	for {
		var next <-chan time.Time
		if c.advance != nil {
			next = c.advance.C
		}
		select {
		case msg, ok := <-inbound:
			if !ok {
				break loop
			}
			c.handle(msg)
		case <-next:
			c.advance = nil
			c.showCurrent()
		case <-c.done:
			break loop
		}
	}

	c.stopAdvance()
	close(c.send)
	<-c.done
}

func (c *wsConn) handle(msg inboundMessage) {
	switch msg.Type {
	case "guess", "guesses":
		var payload guessPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				c.emitError(errors.New("invalid guess payload"))
				return
			}
		}
		answers := payload.Answers
		if msg.Type == "guess" {
			answers = []string{payload.Answer}
		}
		c.guess(answers)
	case "results":
		res, err := c.session.Results()
		if err != nil {
			c.emitError(err)
			return
		}
		c.emit("results", resultsPayload{SessionID: c.session.ID(), Results: res})
	case "restart":
		session, err := c.handler.service.Restart(c.ctx, c.session.ID())
		if err != nil {
			// the old session is still live; keep playing it
			c.emitError(err)
			return
		}
		c.stopAdvance()
		c.session = session
		c.showCurrent()
	default:
		c.emitError(errors.New("unsupported message type"))
	}
}

func (c *wsConn) guess(answers []string) {
	cursor := c.session.Progress().Cursor
	if err := c.gate.Acquire(cursor); err != nil {
		c.emitError(err)
		return
	}
	res, err := c.handler.service.SubmitGuesses(c.ctx, c.session.ID(), answers)
	if err != nil {
		c.gate.Release(cursor)
		c.emitError(err)
		return
	}
	c.emit("guessResult", res)
	c.advance = time.NewTimer(c.gate.Transition())
}

// showCurrent sends the item awaiting an answer, or the results once finished.
func (c *wsConn) showCurrent() {
	item, err := c.session.CurrentItem()
	if errors.Is(err, domain.ErrSessionFinished) {
		res, err := c.session.Results()
		if err != nil {
			c.emitError(err)
			return
		}
		c.emit("results", resultsPayload{SessionID: c.session.ID(), Results: res})
		return
	}
	if err != nil {
		c.emitError(err)
		return
	}
	progress := c.session.Progress()
	c.gate.Shown(progress.Cursor)
	c.emit("item", itemPayload{
		SessionID:  c.session.ID(),
		Item:       item.Public(),
		Progress:   progress,
		CooldownMs: c.handler.pacing.Cooldown.Milliseconds(),
	})
}

func (c *wsConn) stopAdvance() {
	if c.advance != nil {
		c.advance.Stop()
		c.advance = nil
	}
}

func (c *wsConn) emit(typ string, payload any) {
	select {
	case c.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-c.done:
	}
}

func (c *wsConn) emitError(err error) {
	c.emit("error", errorBody(err))
}
