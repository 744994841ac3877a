package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for requests and allocator
// activity.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64

	joins         int64
	leaves        int64
	roomsOpened   int64
	roomsClosed   int64
	capacityRaces int64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Requests      map[string]int64 `json:"requests"`
	Errors        map[string]int64 `json:"errors"`
	Joins         int64            `json:"joins"`
	Leaves        int64            `json:"leaves"`
	RoomsOpened   int64            `json:"rooms_opened"`
	RoomsClosed   int64            `json:"rooms_closed"`
	CapacityRaces int64            `json:"capacity_races"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordJoin counts a committed join, and whether it opened a new room.
func (m *Metrics) RecordJoin(roomCreated bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins++
	if roomCreated {
		m.roomsOpened++
	}
}

// RecordLeave counts a committed leave, and whether it closed the room.
func (m *Metrics) RecordLeave(roomClosed bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves++
	if roomClosed {
		m.roomsClosed++
	}
}

// RecordCapacityRace counts a capacity guard failure observed inside the
// serialized section. Any non-zero value indicates a serialization bug.
func (m *Metrics) RecordCapacityRace() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capacityRaces++
}

// Snapshot copies all counters for reporting.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Requests: make(map[string]int64),
		Errors:   make(map[string]int64),
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	snap.Joins = m.joins
	snap.Leaves = m.leaves
	snap.RoomsOpened = m.roomsOpened
	snap.RoomsClosed = m.roomsClosed
	snap.CapacityRaces = m.capacityRaces
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
