package domain

import (
	"fmt"
	"sort"
	"sync"
)

// Game is the rule set a session plays. Moves are 0-based indexes in
// [0, MoveCount()); transports offer exactly MoveCount() choices.
type Game interface {
	Name() string
	Title() string
	MoveCount() int
	NewBoard() Board
	ApplyMove(board Board, player Marker, move int) bool
	CheckWin(board Board) Marker
	IsFull(board Board) bool
	Render(board Board, symbols Symbols) string
}

// Registry maps game names to their rule sets.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Game
}

func NewRegistry(games ...Game) *Registry {
	r := &Registry{games: make(map[string]Game)}
	for _, g := range games {
		r.games[g.Name()] = g
	}
	return r
}

// DefaultRegistry holds every game this package ships.
func DefaultRegistry() *Registry {
	return NewRegistry(Connect4{}, TicTacToe{})
}

func (r *Registry) Register(g Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.games[g.Name()]; exists {
		return fmt.Errorf("game %q already registered", g.Name())
	}
	r.games[g.Name()] = g
	return nil
}

func (r *Registry) Lookup(name string) (Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, name)
	}
	return g, nil
}

// Names returns the registered game names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.games))
	for name := range r.games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
