package sweeper

import (
	"log"
	"sync"
	"time"

	"github.com/Parth482/Collaborative-Whiteboard/internal/presence"
	"github.com/Parth482/Collaborative-Whiteboard/internal/registry"
)

type Config struct {
	Interval time.Duration
	RoomTTL  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval: time.Hour,
		RoomTTL:  24 * time.Hour,
	}
}

// Service periodically evicts rooms idle past the TTL, cascading removal
// of the presence entries bound to them. Eviction does not check current
// membership; any event on a room refreshes its activity timestamp, so a
// genuinely active room never goes stale.
type Service struct {
	rooms   *registry.Registry
	cursors *presence.Tracker
	config  Config
	stop    chan struct{}
	wg      sync.WaitGroup
}

func New(rooms *registry.Registry, cursors *presence.Tracker, config Config) *Service {
	return &Service{
		rooms:   rooms,
		cursors: cursors,
		config:  config,
		stop:    make(chan struct{}),
	}
}

func (s *Service) Start() {
	s.wg.Add(1)
	go s.run()
	log.Printf("🧹 Eviction sweeper started (interval: %v, room TTL: %v)",
		s.config.Interval, s.config.RoomTTL)
}

func (s *Service) Stop() {
	close(s.stop)
	s.wg.Wait()
	log.Println("🧹 Eviction sweeper stopped")
}

func (s *Service) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.SweepNow()
		}
	}
}

// Runs one eviction pass immediately
func (s *Service) SweepNow() {
	stale := s.rooms.StaleRooms(s.config.RoomTTL)
	for _, roomID := range stale {
		s.rooms.Delete(roomID)
		s.cursors.RemoveRoom(roomID)
		log.Printf("🧹 Evicted inactive room: %s", roomID)
	}
}
