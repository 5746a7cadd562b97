package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thornvale/mud/internal/config"
	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/loop"
	"github.com/thornvale/mud/internal/game/session"
	"github.com/thornvale/mud/internal/storage/file"
)

// CharacterStore is the slice of the character store the frontend needs for
// the login/create handshake.
type CharacterStore interface {
	Authenticate(name, password string) (*character.Character, error)
	Create(name, password string, loc character.Location) (*character.Character, error)
}

// outboxSize bounds per-connection buffered events; a client that cannot
// keep up loses events rather than stalling the game loop.
const outboxSize = 256

// Sentinel reasons for a connection handler finishing. Both are normal
// shutdown paths, not failures.
var (
	errClientGone   = errors.New("client closed connection")
	errSessionEnded = errors.New("session ended")
)

// Server accepts websocket connections and runs one connection handler per
// client.
type Server struct {
	loop     *loop.Loop
	store    CharacterStore
	sessions *session.Registry
	cfg      config.ServerConfig
	game     config.GameConfig
	logger   *zap.Logger

	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// NewServer creates a websocket Server.
//
// Precondition: all collaborators must be non-nil.
func NewServer(
	l *loop.Loop,
	store CharacterStore,
	sessions *session.Registry,
	cfg config.ServerConfig,
	game config.GameConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		loop:     l,
		store:    store,
		sessions: sessions,
		cfg:      cfg,
		game:     game,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The game protocol carries no browser credentials; origin
			// checking is left to a fronting proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start listens and serves until Stop is called.
//
// Postcondition: Returns nil after a clean Stop, or the listen error.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.httpSrv = &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: mux,
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	s.logger.Info("websocket server listening", zap.String("addr", s.cfg.Addr()))

	if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// Stop shuts the HTTP server down, closing all client connections.
func (s *Server) Stop() {
	if s.httpSrv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Warn("websocket server shutdown", zap.Error(err))
	}
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed",
			zap.String("remoteAddr", r.RemoteAddr), zap.Error(err))
		return
	}
	go s.handleConn(conn, r.RemoteAddr)
}

// handleConn runs one client connection: a reader goroutine feeding the
// game loop and a writer goroutine draining the session outbox.
func (s *Server) handleConn(conn *websocket.Conn, remoteAddr string) {
	start := time.Now()
	sess := session.New(outboxSize)
	// Closing the outbox rather than the conn lets the write pump drain
	// already-queued events (the supersede notice among them) first.
	sess.CloseTransport = func() { sess.Outbox().Close() }
	s.sessions.Add(sess)

	s.logger.Info("client connected",
		zap.String("remoteAddr", remoteAddr),
		zap.String("session", sess.ID),
	)

	_ = s.writeFrame(conn, ServerFrame{
		Type:    FrameInfo,
		Message: "Welcome to Thornvale. Send a login or create frame to begin.",
	})

	// Both pumps return a non-nil error when the connection should end; the
	// group context then cancels and the conn close unblocks the other pump.
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return s.readLoop(conn, sess) })
	g.Go(func() error { return s.writeLoop(ctx, conn, sess) })
	g.Go(func() error {
		<-ctx.Done()
		_ = conn.Close()
		return nil
	})
	err := g.Wait()

	s.loop.Disconnect(sess)

	fields := []zap.Field{
		zap.String("remoteAddr", remoteAddr),
		zap.String("session", sess.ID),
		zap.String("character", sess.Name()),
		zap.Duration("connected", time.Since(start)),
	}
	if err != nil && !errors.Is(err, errClientGone) && !errors.Is(err, errSessionEnded) {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Info("client disconnected", fields...)
}

// readLoop decodes client frames and feeds them to the game loop.
func (s *Server) readLoop(conn *websocket.Conn, sess *session.Session) error {
	for {
		if s.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		var frame ClientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errClientGone
			}
			return fmt.Errorf("reading client frame: %w", err)
		}

		switch frame.Type {
		case FrameLogin:
			s.handleLogin(conn, sess, frame)
		case FrameCreate:
			s.handleCreate(conn, sess, frame)
		case FrameCommand:
			if !sess.Playing() {
				_ = s.writeFrame(conn, ServerFrame{Type: FrameAuth, Message: "Log in first."})
				continue
			}
			if err := s.loop.HandleLine(sess, frame.Line); err != nil {
				return err
			}
		default:
			_ = s.writeFrame(conn, ServerFrame{Type: FrameInfo,
				Message: fmt.Sprintf("Unknown frame type %q.", frame.Type)})
		}
	}
}

// writeLoop drains the session outbox to the client.
func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, sess *session.Session) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sess.Outbox().Events():
			if !ok {
				// Session removed; tell the client and finish.
				_ = s.writeFrame(conn, ServerFrame{Type: FrameInfo, Message: "Connection closed."})
				return errSessionEnded
			}
			if err := s.writeFrame(conn, ServerFrame{
				Type: FrameEvent,
				Kind: string(ev.Kind),
				Text: ev.Text,
			}); err != nil {
				return err
			}
		}
	}
}

func (s *Server) handleLogin(conn *websocket.Conn, sess *session.Session, frame ClientFrame) {
	if sess.Playing() {
		_ = s.writeFrame(conn, ServerFrame{Type: FrameAuth, Message: "Already logged in."})
		return
	}
	sess.State = session.StateAuthenticating

	name, err := character.CanonicalName(frame.Name, s.game.NameMinLength, s.game.NameMaxLength)
	if err != nil {
		s.authFail(conn, sess, "No such character.")
		return
	}
	c, err := s.store.Authenticate(name, frame.Password)
	if err != nil {
		switch {
		case errors.Is(err, file.ErrNotFound):
			s.authFail(conn, sess, "No such character.")
		case errors.Is(err, file.ErrInvalidCredentials):
			s.authFail(conn, sess, "Invalid password.")
		default:
			s.logger.Error("authentication error", zap.String("character", name), zap.Error(err))
			s.authFail(conn, sess, "An internal error occurred. Please try again.")
		}
		return
	}

	s.finishAuth(conn, sess, c, fmt.Sprintf("Welcome back, %s!", c.Name))
}

func (s *Server) handleCreate(conn *websocket.Conn, sess *session.Session, frame ClientFrame) {
	if sess.Playing() {
		_ = s.writeFrame(conn, ServerFrame{Type: FrameAuth, Message: "Already logged in."})
		return
	}
	sess.State = session.StateAuthenticating

	name, err := character.CanonicalName(frame.Name, s.game.NameMinLength, s.game.NameMaxLength)
	if err != nil {
		s.authFail(conn, sess, fmt.Sprintf(
			"Names are %d-%d letters.", s.game.NameMinLength, s.game.NameMaxLength))
		return
	}
	if len(frame.Password) < s.game.PasswordMinLength {
		s.authFail(conn, sess, fmt.Sprintf(
			"Passwords must be at least %d characters.", s.game.PasswordMinLength))
		return
	}

	area, room, _ := strings.Cut(s.game.DefaultRespawnRoom, ".")
	c, err := s.store.Create(name, frame.Password, character.Location{Area: area, Room: room})
	if err != nil {
		if errors.Is(err, file.ErrExists) {
			s.authFail(conn, sess, "That name is already taken.")
			return
		}
		s.logger.Error("character creation error", zap.String("character", name), zap.Error(err))
		s.authFail(conn, sess, "An internal error occurred. Please try again.")
		return
	}

	s.finishAuth(conn, sess, c, fmt.Sprintf("Welcome to Thornvale, %s!", c.Name))
}

func (s *Server) finishAuth(conn *websocket.Conn, sess *session.Session, c *character.Character, msg string) {
	if err := s.loop.StartPlaying(sess, c); err != nil {
		s.authFail(conn, sess, "The server is shutting down.")
		return
	}
	_ = s.writeFrame(conn, ServerFrame{Type: FrameAuth, OK: true, Message: msg})
	s.logger.Info("character logged in",
		zap.String("character", c.Name), zap.String("session", sess.ID))
}

func (s *Server) authFail(conn *websocket.Conn, sess *session.Session, msg string) {
	sess.State = session.StateUnauthenticated
	_ = s.writeFrame(conn, ServerFrame{Type: FrameAuth, OK: false, Message: msg})
}

func (s *Server) writeFrame(conn *websocket.Conn, frame ServerFrame) error {
	if s.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	return conn.WriteJSON(frame)
}
