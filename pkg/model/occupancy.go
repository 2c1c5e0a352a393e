package model

import "time"

const (
	OccupancyOccupied    = "occupied"
	OccupancyNotOccupied = "not-occupied"
)

type OccupancyStatus struct {
	RoomID    string    `json:"room_id"`
	Occupied  bool      `json:"occupied"`
	Status    string    `json:"status"`
	CheckedAt time.Time `json:"checked_at"`
}
