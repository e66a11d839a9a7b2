package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const (
	// idleTimeout closes connections that stay silent for too long.
	idleTimeout  = 5 * time.Minute
	closeTimeout = time.Second
)

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, sessionID string) (*tictactoe.Controller, error)
	MakeMove(ctx context.Context, sessionID string, cell int) (*tictactoe.Controller, bool, error)
	JumpTo(ctx context.Context, sessionID string, step int) (*tictactoe.Controller, error)
	Restart(ctx context.Context, sessionID string) (*tictactoe.Controller, error)
}

type handlerFunc func(ctx context.Context, sessionID string, msg *Message, bufrw *bufio.ReadWriter) error

type Server struct {
	logger *slog.Logger
	uGame  gameUseCase
	store  sessions.Store

	handlers map[string]handlerFunc
}

// New - store must be the one the page handlers use, so both see the same game.
func New(logger *slog.Logger, uGame gameUseCase, store sessions.Store) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,
		store:  store,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionGameState] = server.handleGameState
	server.handlers[actionGameMove] = server.handleGameMove
	server.handlers[actionGameJump] = server.handleGameJump
	server.handlers[actionGameRestart] = server.handleGameRestart

	return server
}

// Handler - returns the upgrade handler, connections are closed once ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	key := req.Header.Get("Sec-WebSocket-Key")
	if !strings.EqualFold(req.Header.Get("Upgrade"), "websocket") || key == "" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	sessionID, err := that.session(writer, req)
	if err != nil {
		log.Error("failed to save session", "error", err)
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking")
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	// Set-Cookie headers written by the session store go out with the handshake
	cookies := writer.Header().Values("Set-Cookie")

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer conn.Close()

	// the http server deadlines no longer apply to a hijacked connection
	if err = conn.SetDeadline(time.Time{}); err != nil {
		log.Error("failed to reset deadline", "error", err)
		return
	}

	if err = writeHandshake(bufrw, pkg.GenerateAcceptKey(key), cookies); err != nil {
		log.Error("failed to write handshake", "error", err)
		return
	}

	log.Info("WebSocket connection established", "session", sessionID)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	if err = that.handleMessages(ctx, sessionID, conn, bufrw); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// session reads the game session from the shared cookie store, a new one is saved into
// writer headers.
func (that *Server) session(writer http.ResponseWriter, req *http.Request) (string, error) {
	sess, err := that.store.Get(req, pkg.SessionCookieName)
	if sess == nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}

	if err != nil {
		that.logger.Debug("session cookie rejected, starting a new session", "error", err)
	}

	sessionID, created := pkg.SessionID(sess)
	if !created {
		return sessionID, nil
	}

	if err = sess.Save(req, writer); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return sessionID, nil
}

func writeHandshake(bufrw *bufio.ReadWriter, acceptKey string, cookies []string) error {
	var b strings.Builder

	b.WriteString("HTTP/1.1 101 Switching Protocols\r\n")
	b.WriteString("Upgrade: websocket\r\n")
	b.WriteString("Connection: Upgrade\r\n")
	b.WriteString("Sec-WebSocket-Accept: " + acceptKey + "\r\n")

	for _, cookie := range cookies {
		b.WriteString("Set-Cookie: " + cookie + "\r\n")
	}

	b.WriteString("\r\n")

	if _, err := bufrw.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write handshake: %w", err)
	}

	if err := bufrw.Flush(); err != nil {
		return fmt.Errorf("failed to flush handshake: %w", err)
	}

	return nil
}

// handleMessages - processes messages from the client until it goes away.
func (that *Server) handleMessages(ctx context.Context, sessionID string, conn net.Conn, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMessages", "session", sessionID)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
			return fmt.Errorf("failed to set read deadline: %w", err)
		}

		reqBody, err := readMessage(bufrw)
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) || errors.Is(err, io.EOF) || ctx.Err() != nil {
				log.Info("WebSocket connection closed")
				return nil
			}

			that.closeWithStatus(conn, bufrw, err)

			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)

			if err = sendErrorResponse(bufrw, "", "invalid message"); err != nil {
				return err
			}

			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)

			if err = sendErrorResponse(bufrw, message.Action, "unknown action"); err != nil {
				return err
			}

			continue
		}

		if err = handler(ctx, sessionID, &message, bufrw); err != nil {
			return fmt.Errorf("failed to process %s: %w", message.Action, err)
		}
	}
}

// closeWithStatus tells the client why the connection is dropped when the reason is its own frames.
func (that *Server) closeWithStatus(conn net.Conn, bufrw *bufio.ReadWriter, err error) {
	var code uint16

	switch {
	case errors.Is(err, ErrProtocolViolation), errors.Is(err, ErrUnsupportedOpCode):
		code = closeProtocolError
	case errors.Is(err, ErrPayloadTooLarge):
		code = closeMessageTooBig
	default:
		return
	}

	if deadlineErr := conn.SetWriteDeadline(time.Now().Add(closeTimeout)); deadlineErr != nil {
		return
	}

	if closeErr := sendClose(bufrw.Writer, code); closeErr != nil {
		that.logger.Debug("failed to send close frame", "error", closeErr)
	}
}
