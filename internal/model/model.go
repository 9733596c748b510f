package model

import (
	"github.com/firesense-dev/firesense/internal/model/entities"
	"github.com/firesense-dev/firesense/internal/model/messages"
)

// Aliases exposing the common types to the services.

type (
	SensorReading    = messages.SensorReading
	ThermalFrame     = messages.ThermalFrame
	VisionScore      = messages.VisionScore
	AlarmEvent       = messages.AlarmEvent
	StateChangeEvent = messages.StateChangeEvent
	SirenResultEvent = messages.SirenResultEvent
	Site             = entities.Site
	Stream           = entities.Stream
	Annunciator      = entities.Annunciator
	Thresholds       = entities.Thresholds
	SirenState       = entities.SirenState
)

const (
	StateIdle     = entities.StateIdle
	StateSounding = entities.StateSounding
)
