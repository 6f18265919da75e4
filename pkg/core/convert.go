// Package core provides the main Reverie client and memory management functionality.
package core

import (
	"github.com/reverielab/reverie-go/pkg/classify"
	"github.com/reverielab/reverie-go/pkg/insight"
	"github.com/reverielab/reverie-go/pkg/storage"
)

// memoryFromStorage converts a storage record to the core representation.
func memoryFromStorage(m *storage.Memory) *Memory {
	if m == nil {
		return nil
	}
	return &Memory{
		ID:          m.ID,
		Content:     m.Content,
		Summary:     m.Summary,
		Kind:        MemoryKind(m.Kind),
		Tags:        m.Tags,
		Connections: m.Connections,
		RoomID:      m.RoomID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// memoryToStorage converts a core memory to its storage record.
func memoryToStorage(m *Memory) *storage.Memory {
	if m == nil {
		return nil
	}
	return &storage.Memory{
		ID:          m.ID,
		Content:     m.Content,
		Summary:     m.Summary,
		Kind:        string(m.Kind),
		Tags:        m.Tags,
		Connections: m.Connections,
		RoomID:      m.RoomID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// roomFromStorage converts a storage record to the core representation.
func roomFromStorage(r *storage.Room) *Room {
	if r == nil {
		return nil
	}
	return &Room{
		ID:          r.ID,
		Name:        r.Name,
		Icon:        r.Icon,
		Color:       r.Color,
		MemoryCount: r.MemoryCount,
		CreatedAt:   r.CreatedAt,
	}
}

// roomToStorage converts a core room to its storage record.
func roomToStorage(r *Room) *storage.Room {
	if r == nil {
		return nil
	}
	return &storage.Room{
		ID:        r.ID,
		Name:      r.Name,
		Icon:      r.Icon,
		Color:     r.Color,
		CreatedAt: r.CreatedAt,
	}
}

// memoriesToInsight converts core memories to the insight snapshot type.
func memoriesToInsight(memories []*Memory) []*insight.Memory {
	snapshot := make([]*insight.Memory, 0, len(memories))
	for _, m := range memories {
		snapshot = append(snapshot, &insight.Memory{
			ID:          m.ID,
			Content:     m.Content,
			Summary:     m.Summary,
			Kind:        insight.MemoryKind(m.Kind),
			Tags:        m.Tags,
			Connections: m.Connections,
			RoomID:      m.RoomID,
			CreatedAt:   m.CreatedAt,
			UpdatedAt:   m.UpdatedAt,
		})
	}
	return snapshot
}

// roomsToInsight converts core rooms to the insight snapshot type.
func roomsToInsight(rooms []*Room) []*insight.Room {
	snapshot := make([]*insight.Room, 0, len(rooms))
	for _, r := range rooms {
		snapshot = append(snapshot, &insight.Room{
			ID:          r.ID,
			Name:        r.Name,
			Icon:        r.Icon,
			Color:       r.Color,
			MemoryCount: r.MemoryCount,
			CreatedAt:   r.CreatedAt,
		})
	}
	return snapshot
}

// roomsToClassify converts core rooms to the classifier's room type.
func roomsToClassify(rooms []*Room) []classify.Room {
	converted := make([]classify.Room, 0, len(rooms))
	for _, r := range rooms {
		converted = append(converted, classify.Room{ID: r.ID, Name: r.Name})
	}
	return converted
}
