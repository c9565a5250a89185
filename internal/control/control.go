// Package control lets a remote operator change a running sink's transport
// mode and destinations over a websocket.
//
// Commands are JSON messages of the form
//
//	{ "op": "mode", "mode": "rtp" }
//	{ "op": "set", "address": "10.0.0.2", "port": 9998 }
//	{ "op": "add", "address": "10.0.0.3", "port": 5004 }
//	{ "op": "delete", "address": "10.0.0.3", "port": 5004 }
//
// Each is answered with { "ok": true } once queued, or { "ok": false,
// "error": "..." } if rejected. Queued commands take effect when the audio
// goroutine calls Apply, so they never race with sample writes.
package control

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/lanikai/audionet"
	"github.com/lanikai/audionet/internal/logging"
)

var log = logging.DefaultLogger.WithTag("control")

var errQueueFull = errors.New("command queue full")

// Target is the part of a sink that commands act on.
type Target interface {
	SelectMode(m audionet.Mode) bool
	SetDestination(address string, port uint16)
	AddDestination(address string, port uint16)
	DeleteDestination(address string, port uint16)
}

type Command struct {
	Op      string `json:"op"`
	Mode    string `json:"mode,omitempty"`
	Address string `json:"address,omitempty"`
	Port    uint16 `json:"port,omitempty"`
}

type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (c Command) validate() error {
	switch c.Op {
	case "mode":
		_, err := audionet.ParseMode(c.Mode)
		return err
	case "set", "add", "delete":
		if c.Address == "" || c.Port == 0 {
			return errors.Errorf("%s: address and port required", c.Op)
		}
		return nil
	}
	return errors.Errorf("unknown op '%s'", c.Op)
}

func (c Command) apply(t Target) {
	switch c.Op {
	case "mode":
		m, _ := audionet.ParseMode(c.Mode)
		if !t.SelectMode(m) {
			log.Warn("Mode %v rejected", m)
		}
	case "set":
		t.SetDestination(c.Address, c.Port)
	case "add":
		t.AddDestination(c.Address, c.Port)
	case "delete":
		t.DeleteDestination(c.Address, c.Port)
	}
}

// Server is an http.Handler accepting control websockets.
type Server struct {
	commands chan Command
	upgrader websocket.Upgrader
}

// NewServer creates a server that queues up to n commands between calls to
// Apply.
func NewServer(n int) *Server {
	return &Server{commands: make(chan Command, n)}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("upgrade: %v", err)
		return
	}
	defer ws.Close()

	log.Info("Control connection from %s", r.RemoteAddr)
	for {
		var cmd Command
		if err := ws.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Failed to read control message: %v", err)
			}
			return
		}

		reply := Reply{OK: true}
		if err := s.Submit(cmd); err != nil {
			reply = Reply{Error: err.Error()}
		}
		if err := ws.WriteJSON(reply); err != nil {
			log.Warn("Failed to reply: %v", err)
			return
		}
	}
}

// Submit validates cmd and queues it as if it had arrived over a websocket.
func (s *Server) Submit(cmd Command) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	select {
	case s.commands <- cmd:
		log.Debug("Queued %+v", cmd)
		return nil
	default:
		return errQueueFull
	}
}

// Apply runs every queued command against t and returns how many ran. It
// never blocks, so the audio goroutine can call it between samples.
func (s *Server) Apply(t Target) int {
	n := 0
	for {
		select {
		case cmd := <-s.commands:
			cmd.apply(t)
			n++
		default:
			return n
		}
	}
}
