package lobby

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"tcpong/internal/protocol"
)

// Registry maps lobby ids to lobbies. Each lobby has its own lock, held for a
// whole state transition. The map lock only guards the map and nothing waits
// on a lobby lock while holding it, so lobbies never wait on each other.
type Registry struct {
	mu      sync.Mutex
	lobbies map[string]*entry
	log     *slog.Logger
}

type entry struct {
	mu      sync.Mutex
	lobby   *Lobby
	removed atomic.Bool
}

type Stats struct {
	Total           int `json:"total"`
	AwaitingJoin    int `json:"awaiting_join"`
	AwaitingReadies int `json:"awaiting_readies"`
	Playing         int `json:"playing"`
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		lobbies: make(map[string]*entry),
		log:     logger,
	}
}

func (r *Registry) lookup(id string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.lobbies[id]
	if !ok || e.removed.Load() {
		return nil
	}
	return e
}

// Create adds a lobby hosted by host and sends the host NewLobbyCreated. It
// fails with ErrLobbyExists if a live lobby already has this id.
func (r *Registry) Create(id string, host Conn) error {
	e := &entry{lobby: &Lobby{
		ID:    id,
		State: AwaitingJoin,
		Left:  host,
		log:   r.log.With(slog.String("lobby_id", id)),
	}}
	// locked before it is visible so nobody can join ahead of the reply
	e.mu.Lock()
	defer e.mu.Unlock()

	r.mu.Lock()
	if old, ok := r.lobbies[id]; ok && !old.removed.Load() {
		r.mu.Unlock()
		return ErrLobbyExists
	}
	r.lobbies[id] = e
	r.mu.Unlock()

	e.lobby.send(host, protocol.NewLobbyCreated(id))
	e.lobby.log.Info("lobby created", slog.String("conn_id", host.ID()))
	return nil
}

// Join puts c into the lobby as the right player and notifies both sides.
// A missing lobby answers LobbyNotFound, a full one LobbyFull; neither
// changes any state.
func (r *Registry) Join(id string, c Conn) error {
	e := r.lookup(id)
	if e != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
	}
	if e == nil || e.removed.Load() {
		if err := c.Send(protocol.LobbyNotFound); err != nil {
			r.log.Warn("failed to send message",
				slog.String("conn_id", c.ID()),
				slog.String("message", protocol.LobbyNotFound.String()),
				slog.Any("error", err))
		}
		return ErrLobbyNotFound
	}
	return e.lobby.join(c)
}

// Update runs fn with the lobby locked. It reports false if there is no such
// lobby, including one removed while Update waited for the lock.
func (r *Registry) Update(id string, fn func(l *Lobby)) bool {
	e := r.lookup(id)
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed.Load() {
		return false
	}
	fn(e.lobby)
	return true
}

// Leave removes the lobby c belongs to and tells the opponent, if any, that
// c has left. Nothing happens if c is not in lobby id; this keeps a late
// disconnect from tearing down a newer lobby that reused the id. It returns
// the state the lobby was in.
func (r *Registry) Leave(id string, c Conn) (State, bool) {
	e := r.lookup(id)
	if e == nil {
		return 0, false
	}

	e.mu.Lock()
	if e.removed.Load() || !e.lobby.Has(c) {
		e.mu.Unlock()
		return 0, false
	}
	e.removed.Store(true)
	l := e.lobby
	l.notifyLeft(c)
	e.mu.Unlock()

	r.mu.Lock()
	if r.lobbies[id] == e {
		delete(r.lobbies, id)
	}
	r.mu.Unlock()

	l.log.Info("lobby closed",
		slog.String("conn_id", c.ID()),
		slog.String("state", l.State.String()))
	return l.State, true
}

// Len returns the number of live lobbies.
func (r *Registry) Len() int {
	return r.Stats().Total
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.lobbies))
	for _, e := range r.lobbies {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	var s Stats
	for _, e := range entries {
		e.mu.Lock()
		state, removed := e.lobby.State, e.removed.Load()
		e.mu.Unlock()
		if removed {
			continue
		}
		s.Total++
		switch state {
		case AwaitingJoin:
			s.AwaitingJoin++
		case AwaitingReadies:
			s.AwaitingReadies++
		case Playing:
			s.Playing++
		}
	}
	return s
}
