package repository

import (
	"context"
	"sync"

	"loadmap/internal/domain"
)

// MemoryRoomsRepo in-process room store keyed by plan
type MemoryRoomsRepo struct {
	mu    sync.RWMutex
	rooms map[string][]domain.Room
}

func NewMemoryRoomsRepo() *MemoryRoomsRepo {
	return &MemoryRoomsRepo{rooms: map[string][]domain.Room{}}
}

func (r *MemoryRoomsRepo) ListRooms(_ context.Context, planID string) ([]domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.rooms[planID]
	out := make([]domain.Room, len(src))
	copy(out, src)
	return out, nil
}

func (r *MemoryRoomsRepo) CreateRooms(_ context.Context, planID string, rooms []domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms[planID] {
		for _, n := range rooms {
			if room.ID == n.ID {
				return ErrDuplicate
			}
		}
	}
	for _, room := range rooms {
		room.PlanID = planID
		r.rooms[planID] = append(r.rooms[planID], room)
	}
	return nil
}
