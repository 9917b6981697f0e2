package spatial

import "time"

// RoomRecord describes one discovered room. Rooms are append-only after
// discovery except for revisit bookkeeping and user renames.
type RoomRecord struct {
	ID           string    `json:"room_id"`
	DetectedType string    `json:"auto_detected_type"`
	Name         string    `json:"user_assigned_name,omitempty"`
	Keywords     []string  `json:"objects_present"`
	Description  string    `json:"description"`
	SizeClass    string    `json:"estimated_size"`
	Confidence   float64   `json:"confidence"`
	DiscoveredAt time.Time `json:"discovery_timestamp"`
	LastVisited  time.Time `json:"last_visited"`
	VisitCount   int       `json:"visit_count"`
}

// DisplayName returns the user-assigned name when present, otherwise the
// auto-detected room type.
func (r *RoomRecord) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.DetectedType
}

// ObjectLocation records that an object was seen in a room, with a
// frequency-derived confidence.
type ObjectLocation struct {
	Object     string    `json:"object_name"`
	RoomID     string    `json:"room_id"`
	Frequency  int       `json:"frequency"`
	LastSeen   time.Time `json:"last_seen"`
	Confidence float64   `json:"confidence"`
}

// Prediction is a room candidate for finding an object, ordered by
// descending confidence.
type Prediction struct {
	RoomID     string
	Confidence float64
}
