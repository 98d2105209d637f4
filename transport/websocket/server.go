package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/quatro-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	StartGame(ctx context.Context, player1, player2 string) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	Apply(ctx context.Context, id string, event entity.Event) (*entity.Game, error)
	EndGame(ctx context.Context, id string) error
}

type handlerFunc func(ctx context.Context, msg *Message, c *client) error

type Server struct {
	logger   *slog.Logger
	games    gameUseCase
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc

	subscriptionsMutex sync.RWMutex
	subscriptions      map[string]map[*client]struct{}
}

func New(logger *slog.Logger, games gameUseCase) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		games:  games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		handlers:      make(map[string]handlerFunc),
		subscriptions: make(map[string]map[*client]struct{}),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionJoin] = server.handleJoinGame
	server.handlers[actionSelect] = server.handleSelect
	server.handlers[actionPlace] = server.handlePlace
	server.handlers[actionRestart] = server.handleRestart
	server.handlers[actionLeave] = server.handleLeave

	return server
}

func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}

		return nil
	}
}

// serveWS - upgrades the connection and runs its read loop until the peer goes away.
func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	// hijacked connections outlive srv.Shutdown
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	c := newClient(that.logger, conn)
	go c.writePump()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	that.handleMessages(ctx, c)

	that.unsubscribe(c)
	close(c.send)

	log.Info("WebSocket connection closed", "remote", r.RemoteAddr)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	c.prepareRead()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			that.sendError(c, actionError, nil, "invalid message")
			continue
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			that.sendError(c, msg.Action, nil, "unknown action")
			continue
		}

		if err = handler(ctx, &msg, c); err != nil {
			log.Error("error processing message", "action", msg.Action, "error", err)
		}
	}
}

// subscribe - moves the client to the subscribers of gameID.
func (that *Server) subscribe(c *client, gameID string) {
	that.unsubscribe(c)

	that.subscriptionsMutex.Lock()
	defer that.subscriptionsMutex.Unlock()

	clients, ok := that.subscriptions[gameID]
	if !ok {
		clients = make(map[*client]struct{})
		that.subscriptions[gameID] = clients
	}
	clients[c] = struct{}{}
	c.gameID = gameID
}

func (that *Server) unsubscribe(c *client) {
	if c.gameID == "" {
		return
	}

	that.subscriptionsMutex.Lock()
	defer that.subscriptionsMutex.Unlock()

	if clients, ok := that.subscriptions[c.gameID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(that.subscriptions, c.gameID)
		}
	}
	c.gameID = ""
}

func (that *Server) subscribers(gameID string) int {
	that.subscriptionsMutex.RLock()
	defer that.subscriptionsMutex.RUnlock()

	return len(that.subscriptions[gameID])
}

// broadcast - sends the message to every connection subscribed to gameID.
func (that *Server) broadcast(gameID, action string, payload Payload) {
	log := that.logger.With("method", "broadcast", "gameID", gameID)

	data, err := encodeMessage(action, payload)
	if err != nil {
		log.Error("failed to encode message", "error", err)
		return
	}

	that.subscriptionsMutex.RLock()
	defer that.subscriptionsMutex.RUnlock()

	for c := range that.subscriptions[gameID] {
		if !c.enqueue(data) {
			log.Warn("send buffer full, dropping update")
		}
	}
}

func (that *Server) send(c *client, action string, payload Payload) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "method", "send", "error", err)
		return
	}

	if !c.enqueue(data) {
		that.logger.Warn("send buffer full, dropping message", "method", "send", "action", action)
	}
}

func (that *Server) sendError(c *client, action string, game *entity.Game, errorMsg string) {
	payload := newGamePayload(game)
	payload.Error = errorMsg

	that.send(c, action, payload)
}
