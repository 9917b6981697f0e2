package spatial

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// mapFile is the on-disk shape of the spatial map. The whole file is
// rewritten on every mutation; there is no incremental or transactional
// update path.
type mapFile struct {
	Rooms           map[string]*RoomRecord       `json:"rooms"`
	ObjectLocations map[string][]*ObjectLocation `json:"object_locations"`
	LastUpdated     time.Time                    `json:"last_updated"`
}

// Save writes the full map to the configured path. In-memory stores
// (empty path) are a no-op.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked()
}

// persistLocked writes the map file. Callers must hold at least a read lock.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	file := mapFile{
		Rooms:           s.rooms,
		ObjectLocations: s.objects,
		LastUpdated:     s.clock(),
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode spatial map: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write spatial map: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace spatial map: %w", err)
	}
	return nil
}

// Load replaces the in-memory map with the contents of the configured
// path. A missing file leaves the store empty without error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read spatial map: %w", err)
	}
	var file mapFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decode spatial map: %w", err)
	}
	s.rooms = file.Rooms
	s.objects = file.ObjectLocations
	if s.rooms == nil {
		s.rooms = map[string]*RoomRecord{}
	}
	if s.objects == nil {
		s.objects = map[string][]*ObjectLocation{}
	}
	return nil
}
