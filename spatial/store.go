package spatial

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roverkit/seeker/logging"
)

const (
	// objectMatchThreshold is the minimum object-set overlap for two scans
	// to be considered the same room.
	objectMatchThreshold = 0.6
	// descMatchThreshold is the minimum description-token overlap for two
	// scans to be considered the same room.
	descMatchThreshold = 0.7
	// confidencePerSighting is the confidence contributed by each sighting
	// of an object in a room, capped at 1.0.
	confidencePerSighting = 0.2
	// DefaultRetention is how long an object sighting stays usable for
	// predictions before Decay removes it.
	DefaultRetention = 24 * time.Hour
)

// Options configure a Store.
type Options struct {
	// Path is the JSON map file. Empty means in-memory only.
	Path string
	// Retention bounds how long object sightings survive. Defaults to
	// DefaultRetention.
	Retention time.Duration
	// Logger receives persistence warnings. Defaults to NoOpLogger.
	Logger logging.Logger
	// Clock overrides time.Now for tests.
	Clock func() time.Time
}

// Store is the spatial memory: discovered rooms plus learned object→room
// associations. It is safe for concurrent access and persists every
// mutation as a full-file JSON overwrite.
type Store struct {
	mu        sync.RWMutex
	rooms     map[string]*RoomRecord
	objects   map[string][]*ObjectLocation
	path      string
	retention time.Duration
	logger    logging.Logger
	clock     func() time.Time
}

// NewStore creates a Store. If a path is configured and the file exists it
// is loaded; an unreadable or corrupt file degrades to an empty store with
// a warning rather than failing.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{Retention: DefaultRetention, Logger: logging.NoOpLogger{}, Clock: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	s := &Store{
		rooms:     map[string]*RoomRecord{},
		objects:   map[string][]*ObjectLocation{},
		path:      opts.Path,
		retention: opts.Retention,
		logger:    opts.Logger,
		// UTC() drops the monotonic clock reading and normalizes the
		// location so stamped times survive a JSON persist/reload
		// round trip unchanged.
		clock: func() time.Time { return opts.Clock().UTC() },
	}
	if s.path != "" {
		if err := s.Load(); err != nil {
			s.logger.Warn("Spatial map load failed, starting empty", "path", s.path, "error", err)
			s.rooms = map[string]*RoomRecord{}
			s.objects = map[string][]*ObjectLocation{}
		}
	}
	return s
}

// overlap is the size of the intersection of two lowercased string sets
// divided by the size of the larger set.
func overlap(a, b []string) float64 {
	setA := map[string]struct{}{}
	for _, s := range a {
		setA[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	setB := map[string]struct{}{}
	for _, s := range b {
		setB[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	shared := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			shared++
		}
	}
	max := len(setA)
	if len(setB) > max {
		max = len(setB)
	}
	if max < 1 {
		max = 1
	}
	return float64(shared) / float64(max)
}

// MatchRoom reports whether a scan (object keywords plus description)
// matches an already known room. A room qualifies when object overlap
// exceeds 0.6 or description-token overlap exceeds 0.7; among qualifying
// rooms the highest object overlap wins, with description overlap acting
// only as a qualifying signal.
func (s *Store) MatchRoom(keywords []string, description string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	descTokens := strings.Fields(strings.ToLower(description))
	bestID := ""
	bestObj := -1.0
	for id, room := range s.rooms {
		objSim := overlap(keywords, room.Keywords)
		descSim := overlap(descTokens, strings.Fields(strings.ToLower(room.Description)))
		if objSim <= objectMatchThreshold && descSim <= descMatchThreshold {
			continue
		}
		if objSim > bestObj || (objSim == bestObj && id < bestID) {
			bestID = id
			bestObj = objSim
		}
	}
	return bestID, bestID != ""
}

// AddRoom registers a newly discovered room and returns its ID. A missing
// ID is generated; discovery timestamps and the initial visit default to
// the current clock.
func (s *Store) AddRoom(rec RoomRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = "room_" + uuid.NewString()[:8]
	}
	if _, exists := s.rooms[rec.ID]; exists {
		return "", fmt.Errorf("room %q already exists", rec.ID)
	}
	now := s.clock()
	if rec.DiscoveredAt.IsZero() {
		rec.DiscoveredAt = now
	}
	if rec.LastVisited.IsZero() {
		rec.LastVisited = now
	}
	if rec.VisitCount == 0 {
		rec.VisitCount = 1
	}
	rec.Confidence = clamp01(rec.Confidence)
	s.rooms[rec.ID] = &rec
	return rec.ID, s.persistLocked()
}

// TouchRoom records a revisit of a known room.
func (s *Store) TouchRoom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return fmt.Errorf("unknown room %q", id)
	}
	room.VisitCount++
	room.LastVisited = s.clock()
	return s.persistLocked()
}

// RenameRoom sets the user-assigned name of a room. Renaming and revisit
// bookkeeping are the only permitted room mutations after discovery.
func (s *Store) RenameRoom(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return fmt.Errorf("unknown room %q", id)
	}
	room.Name = strings.TrimSpace(name)
	return s.persistLocked()
}

// Room returns a copy of the room record for the given ID.
func (s *Store) Room(id string) (RoomRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return RoomRecord{}, false
	}
	return *room, true
}

// Rooms returns copies of all room records sorted by discovery time.
func (s *Store) Rooms() []RoomRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]RoomRecord, 0, len(s.rooms))
	for _, room := range s.rooms {
		res = append(res, *room)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].DiscoveredAt.Equal(res[j].DiscoveredAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].DiscoveredAt.Before(res[j].DiscoveredAt)
	})
	return res
}

// LearnObjectLocation records that the object was seen in the given room.
// Repeat sightings in the same room raise the association's frequency and
// its confidence, capped at 1.0.
func (s *Store) LearnObjectLocation(object, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return fmt.Errorf("unknown room %q", roomID)
	}
	key := normalizeObject(object)
	now := s.clock()
	for _, loc := range s.objects[key] {
		if loc.RoomID == roomID {
			loc.Frequency++
			loc.Confidence = clamp01(confidencePerSighting * float64(loc.Frequency))
			loc.LastSeen = now
			return s.persistLocked()
		}
	}
	s.objects[key] = append(s.objects[key], &ObjectLocation{
		Object:     key,
		RoomID:     roomID,
		Frequency:  1,
		LastSeen:   now,
		Confidence: confidencePerSighting,
	})
	return s.persistLocked()
}

// PredictRooms returns room candidates for an object ordered by descending
// confidence. Sightings older than the retention window are ignored.
func (s *Store) PredictRooms(object string) []Prediction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clock()
	var preds []Prediction
	for _, loc := range s.objects[normalizeObject(object)] {
		if now.Sub(loc.LastSeen) > s.retention {
			continue
		}
		preds = append(preds, Prediction{RoomID: loc.RoomID, Confidence: loc.Confidence})
	}
	sort.Slice(preds, func(i, j int) bool {
		if preds[i].Confidence != preds[j].Confidence {
			return preds[i].Confidence > preds[j].Confidence
		}
		return preds[i].RoomID < preds[j].RoomID
	})
	return preds
}

// Decay removes object sightings older than the retention window and
// returns how many were dropped. Decay is removal, not gradual weakening.
func (s *Store) Decay() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	removed := 0
	for key, locs := range s.objects {
		kept := locs[:0]
		for _, loc := range locs {
			if now.Sub(loc.LastSeen) > s.retention {
				removed++
				continue
			}
			kept = append(kept, loc)
		}
		if len(kept) == 0 {
			delete(s.objects, key)
		} else {
			s.objects[key] = kept
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.persistLocked()
}

// RoomSummary is one room's line in a map Summary.
type RoomSummary struct {
	ID      string
	Name    string
	Type    string
	Objects []string
	Visits  int
}

// ObjectPattern is one learned object→room association in a map Summary.
type ObjectPattern struct {
	Object     string
	RoomID     string
	Frequency  int
	Confidence float64
	LastSeen   time.Time
}

// Summary is an aggregate view of the spatial map for display.
type Summary struct {
	RoomCount   int
	ObjectCount int
	Rooms       []RoomSummary
	Patterns    []ObjectPattern
}

// Summarize builds a display summary of the whole map.
func (s *Store) Summarize() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{RoomCount: len(s.rooms), ObjectCount: len(s.objects)}
	for _, room := range s.rooms {
		objs := make([]string, len(room.Keywords))
		copy(objs, room.Keywords)
		sum.Rooms = append(sum.Rooms, RoomSummary{
			ID:      room.ID,
			Name:    room.DisplayName(),
			Type:    room.DetectedType,
			Objects: objs,
			Visits:  room.VisitCount,
		})
	}
	sort.Slice(sum.Rooms, func(i, j int) bool { return sum.Rooms[i].ID < sum.Rooms[j].ID })
	for _, locs := range s.objects {
		for _, loc := range locs {
			sum.Patterns = append(sum.Patterns, ObjectPattern{
				Object:     loc.Object,
				RoomID:     loc.RoomID,
				Frequency:  loc.Frequency,
				Confidence: loc.Confidence,
				LastSeen:   loc.LastSeen,
			})
		}
	}
	sort.Slice(sum.Patterns, func(i, j int) bool {
		if sum.Patterns[i].Object != sum.Patterns[j].Object {
			return sum.Patterns[i].Object < sum.Patterns[j].Object
		}
		return sum.Patterns[i].RoomID < sum.Patterns[j].RoomID
	})
	return sum
}

func normalizeObject(object string) string {
	return strings.ToLower(strings.TrimSpace(object))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
