package session

import (
	"golang.org/x/oauth2"
	"sync"
)

// Cell holds the bearer token of the single active upstream session.
// The mutex only keeps reads and writes memory safe; concurrent callers racing to authenticate or to clear an
// expired session may still overwrite each other's result.
type Cell struct {
	mtx   sync.RWMutex
	token *oauth2.Token
}

// NewCell creates a new empty (unauthenticated) session cell
func NewCell() *Cell {
	return &Cell{}
}

// Store replaces the current token with a new bearer token
func (cell *Cell) Store(accessToken string) {
	cell.mtx.Lock()
	defer cell.mtx.Unlock()
	cell.token = &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}
}

// Token returns the current token or nil if no session is active
func (cell *Cell) Token() *oauth2.Token {
	cell.mtx.RLock()
	defer cell.mtx.RUnlock()
	return cell.token
}

// Present reports whether a session is active
func (cell *Cell) Present() bool {
	return cell.Token() != nil
}

// AuthorizationHeader returns the value of the 'Authorization' header for the current session
func (cell *Cell) AuthorizationHeader() (string, bool) {
	token := cell.Token()
	if token == nil {
		return "", false
	}
	return token.Type() + " " + token.AccessToken, true
}

// Clear removes the current token.
// Clearing an empty cell is a no-op.
func (cell *Cell) Clear() {
	cell.mtx.Lock()
	defer cell.mtx.Unlock()
	cell.token = nil
}
