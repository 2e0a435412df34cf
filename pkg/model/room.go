package model

import (
	"fmt"
	"strings"
)

// RoomType is the closed set of room kinds the institution tracks.
type RoomType int

const (
	LectureRoom RoomType = iota
	ComputerLab
	HardwareLab
	Seater120
	Seater240
)

var roomTypeNames = map[RoomType]string{
	LectureRoom: "LECTURE_ROOM",
	ComputerLab: "COMPUTER_LAB",
	HardwareLab: "HARDWARE_LAB",
	Seater120:   "SEATER_120",
	Seater240:   "SEATER_240",
}

func (r RoomType) String() string {
	if s, ok := roomTypeNames[r]; ok {
		return s
	}
	return "LECTURE_ROOM"
}

// ParseRoomType maps a (case-insensitive) input value to a RoomType.
func ParseRoomType(s string) (RoomType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LECTURE_ROOM":
		return LectureRoom, nil
	case "COMPUTER_LAB":
		return ComputerLab, nil
	case "HARDWARE_LAB":
		return HardwareLab, nil
	case "SEATER_120":
		return Seater120, nil
	case "SEATER_240":
		return Seater240, nil
	}
	return LectureRoom, fmt.Errorf("unknown room type %q", s)
}

// Room is one schedulable space.
type Room struct {
	ID       string
	Type     RoomType
	Capacity int
}

// SuitsLecture reports whether the room can host lectures, tutorials and
// self-study sessions.
func (r *Room) SuitsLecture() bool {
	return r.Type == LectureRoom || r.Type == Seater120 || r.Type == Seater240
}

// SuitsLab reports whether the room can host lab sessions. Hardware labs
// double as overflow space for computer lab requests.
func (r *Room) SuitsLab() bool {
	return r.Type == ComputerLab || r.Type == HardwareLab
}
