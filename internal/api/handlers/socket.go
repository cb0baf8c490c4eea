package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/semaphore"

	"github.com/wonny/clientintel/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 1 << 20
	maxInflight    = 4
	callTimeoutCap = 5 * time.Minute
)

// ErrBusy is reported when a connection already has maxInflight calls running
var ErrBusy = errors.New("too many tool calls in flight")

// ToolRequest is one inbound tool-call frame
type ToolRequest struct {
	ID        string          `json:"id"`
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResponse answers one ToolRequest; exactly one of Result and Error is set
type ToolResponse struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  *ToolError  `json:"error,omitempty"`
}

// ToolError carries a failure back to the caller
type ToolError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToolSocket serves tool calls over a websocket.
// Calls on one connection run concurrently up to maxInflight; replies are matched by id.
// A call beyond that limit is refused with a 429 reply instead of queueing.
type ToolSocket struct {
	tools    *Toolbox
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewToolSocket creates a websocket endpoint over tools
func NewToolSocket(tools *Toolbox, log *logger.Logger) *ToolSocket {
	if log == nil {
		log = logger.Nop()
	}
	return &ToolSocket{
		tools: tools,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: log.WithComponent("tool_socket"),
	}
}

// ServeHTTP upgrades the connection and runs the read loop
// GET /ws/tools
func (s *ToolSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &toolConn{
		conn:   conn,
		tools:  s.tools,
		sem:    semaphore.NewWeighted(maxInflight),
		logger: s.logger.WithField("remote", r.RemoteAddr),
	}

	c.logger.Debug("Tool socket connected")
	go c.pingLoop(ctx)
	c.readLoop(ctx)

	cancel()
	c.wg.Wait()
	conn.Close()
	c.logger.Debug("Tool socket closed")
}

type toolConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	tools   *Toolbox
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	logger  *logger.Logger
}

func (c *toolConn) readLoop(ctx context.Context) {
	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var req ToolRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if malformed(err) {
				c.write(ToolResponse{Error: &ToolError{Code: http.StatusBadRequest, Message: "malformed frame"}})
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.WithError(err).Warn("Tool socket read failed")
			}
			return
		}

		// a full connection answers at once; the read loop never blocks on a slot
		if !c.sem.TryAcquire(1) {
			c.write(ToolResponse{ID: req.ID, Error: &ToolError{Code: http.StatusTooManyRequests, Message: ErrBusy.Error()}})
			continue
		}
		c.wg.Add(1)
		go func(req ToolRequest) {
			defer c.wg.Done()
			resp := c.handle(ctx, req)
			// free the slot before replying so a caller reacting to the reply finds it open
			c.sem.Release(1)
			c.write(resp)
		}(req)
	}
}

func (c *toolConn) handle(ctx context.Context, req ToolRequest) ToolResponse {
	ctx, cancel := context.WithTimeout(ctx, callTimeoutCap)
	defer cancel()

	start := time.Now()
	result, err := c.tools.Call(ctx, req.Tool, req.Arguments)

	log := c.logger.WithFields(map[string]interface{}{
		"id":       req.ID,
		"tool":     req.Tool,
		"duration": time.Since(start).String(),
	})
	if err != nil {
		log.WithError(err).Warn("Tool call failed")
		return ToolResponse{ID: req.ID, Error: &ToolError{Code: toolStatus(err), Message: err.Error()}}
	}

	log.Debug("Tool call completed")
	return ToolResponse{ID: req.ID, Result: result}
}

func (c *toolConn) write(resp ToolResponse) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(resp); err != nil {
		c.logger.WithError(err).WithField("id", resp.ID).Warn("Tool socket write failed")
	}
}

func (c *toolConn) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// malformed reports a frame that was read but did not decode
func malformed(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF)
}

func toolStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownTool):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArguments):
		return http.StatusBadRequest
	default:
		return statusFor(err)
	}
}
