package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"koi_orders/internal/config"

	"go.uber.org/zap"
)

// Slot file names under the state dir.
const (
	draftQtyFile = "draft_qty.json"
	orderIDFile  = "order_id"
	tokenFile    = "token"
	userFile     = "user.json"
)

// QtyMap maps an item key to its draft quantity.
type QtyMap map[string]float64

// Store persists the client's draft and session slots under a state
// directory. It follows the local-storage contract: loads never fail
// (missing or corrupt state degrades to the empty default) and saves are
// fire-and-forget. If the state dir cannot be created the store runs
// detached: every load returns the default and every save is a no-op.
type Store struct {
	dir      string
	detached bool
	logger   *zap.Logger
}

func New(cfg config.Config, logger *zap.Logger) *Store {
	logger = logger.Named("store")

	dir := strings.TrimSpace(cfg.StateDir)
	detached := dir == ""
	if !detached {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			logger.Warn("state dir unavailable, running detached",
				zap.String("dir", dir),
				zap.Error(err),
			)
			detached = true
		}
	}

	return &Store{dir: dir, detached: detached, logger: logger}
}

func (s *Store) LoadDraftQty() QtyMap {
	raw, ok := s.read(draftQtyFile)
	if !ok {
		return QtyMap{}
	}
	var qty QtyMap
	if err := json.Unmarshal(raw, &qty); err != nil || qty == nil {
		return QtyMap{}
	}
	return qty
}

func (s *Store) SaveDraftQty(qty QtyMap) {
	if qty == nil {
		qty = QtyMap{}
	}
	raw, err := json.Marshal(qty)
	if err != nil {
		return
	}
	s.write(draftQtyFile, raw)
}

func (s *Store) ClearDraftQty() {
	s.remove(draftQtyFile)
}

// LoadOrderID returns the cached order id, or false if the slot is absent
// or does not hold an integer.
func (s *Store) LoadOrderID() (int, bool) {
	raw, ok := s.read(orderIDFile)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *Store) SaveOrderID(id int) {
	s.write(orderIDFile, []byte(strconv.Itoa(id)))
}

func (s *Store) ClearOrderID() {
	s.remove(orderIDFile)
}

func (s *Store) LoadToken() string {
	raw, ok := s.read(tokenFile)
	if !ok {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (s *Store) SaveToken(token string) {
	s.write(tokenFile, []byte(token))
}

func (s *Store) ClearToken() {
	s.remove(tokenFile)
}

// LoadUserJSON returns the raw cached user snapshot; the session layer owns
// the shape and handles parse failures.
func (s *Store) LoadUserJSON() []byte {
	raw, ok := s.read(userFile)
	if !ok {
		return nil
	}
	return raw
}

func (s *Store) SaveUserJSON(raw []byte) {
	if len(raw) == 0 {
		return
	}
	s.write(userFile, raw)
}

func (s *Store) ClearUser() {
	s.remove(userFile)
}

func (s *Store) read(name string) ([]byte, bool) {
	if s.detached {
		return nil, false
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (s *Store) write(name string, raw []byte) {
	if s.detached {
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o600); err != nil {
		s.logger.Warn("state write failed", zap.String("slot", name), zap.Error(err))
	}
}

func (s *Store) remove(name string) {
	if s.detached {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("state remove failed", zap.String("slot", name), zap.Error(err))
	}
}
