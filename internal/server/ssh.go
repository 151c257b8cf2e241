package server

import (
	"fmt"
	"io"
	"log"
	"sync"
	"unicode/utf8"

	"github.com/gliderlabs/ssh"

	"realm-defense/internal/game"
	"realm-defense/internal/render"
)

// SSHServer accepts player sessions and connects them to the game loop.
type SSHServer struct {
	gameLoop *game.GameLoop
	addr     string
	hostKey  string
}

// NewSSHServer creates a new SSH server bound to the given address.
func NewSSHServer(addr string, hostKey string, gl *game.GameLoop) *SSHServer {
	return &SSHServer{gameLoop: gl, addr: addr, hostKey: hostKey}
}

// Start listens for SSH connections until the listener fails.
func (s *SSHServer) Start() error {
	srv := &ssh.Server{Addr: s.addr, Handler: s.handleSession}
	if err := srv.SetOption(ssh.HostKeyFile(s.hostKey)); err != nil {
		return fmt.Errorf("set host key: %w", err)
	}
	log.Printf("[ssh] listening on %s", s.addr)
	return srv.ListenAndServe()
}

// termSize is the session's window, updated by resize requests.
type termSize struct {
	mu   sync.Mutex
	w, h int
}

func (t *termSize) set(w, h int) {
	t.mu.Lock()
	t.w, t.h = w, h
	t.mu.Unlock()
}

func (t *termSize) get() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w, t.h
}

func (s *SSHServer) handleSession(sess ssh.Session) {
	ptyReq, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "Error: PTY required. Use: ssh -t ...")
		return
	}

	name := sess.User()
	if name == "" {
		name = "Anonymous"
	}
	// The username is the player's identity across reconnects.
	playerID, frames := s.gameLoop.AddPlayer(name)
	log.Printf("[ssh] %s joined as %s", name, playerID)
	defer func() {
		s.gameLoop.RemovePlayer(playerID)
		log.Printf("[ssh] %s left", playerID)
	}()

	size := &termSize{w: ptyReq.Window.Width, h: ptyReq.Window.Height}
	go func() {
		for win := range winCh {
			size.set(win.Width, win.Height)
		}
	}()

	io.WriteString(sess, render.EnterScreen)
	defer io.WriteString(sess, render.LeaveScreen)

	quit := make(chan struct{})
	go s.readInput(sess, playerID, quit)

	engine := render.NewEngine(size.get())
	for {
		select {
		case <-quit:
			return
		case state, ok := <-frames:
			if !ok {
				return
			}
			w, h := size.get()
			if out := engine.Render(playerID, state, w, h); out != "" {
				io.WriteString(sess, out)
			}
		}
	}
}

// readInput forwards key presses to the game loop until the player quits
// or the connection drops, then closes quit. Presses are dropped when the
// loop's input channel is full.
func (s *SSHServer) readInput(r io.Reader, playerID string, quit chan<- struct{}) {
	defer close(quit)
	input := s.gameLoop.InputChan()
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		for _, action := range parseInput(buf[:n]) {
			if action == game.ActionQuit {
				return
			}
			select {
			case input <- game.InputEvent{PlayerID: playerID, Action: action}:
			default:
			}
		}
	}
}

// keyActions binds single keys. Letters match either case.
var keyActions = map[rune]game.Action{
	'w':  game.ActionUp,
	'a':  game.ActionLeft,
	's':  game.ActionDown,
	'd':  game.ActionRight,
	' ':  game.ActionAttack,
	'j':  game.ActionAttack,
	'\t': game.ActionLockOn,
	'l':  game.ActionLockOn,
	'r':  game.ActionRestart,
	'q':  game.ActionQuit,
	3:    game.ActionQuit, // Ctrl-C
}

// arrowActions binds the final byte of an ESC [ arrow sequence.
var arrowActions = map[byte]game.Action{
	'A': game.ActionUp,
	'B': game.ActionDown,
	'C': game.ActionRight,
	'D': game.ActionLeft,
}

// parseInput converts raw bytes into player actions. Unbound keys and
// unknown escape sequences are ignored.
func parseInput(data []byte) []game.Action {
	var actions []game.Action
	for i := 0; i < len(data); {
		if i+2 < len(data) && data[i] == 0x1b && data[i+1] == '[' {
			if a, ok := arrowActions[data[i+2]]; ok {
				actions = append(actions, a)
			}
			i += 3
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if a, ok := keyActions[r]; ok {
			actions = append(actions, a)
		}
		i += size
	}
	return actions
}
