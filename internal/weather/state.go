package weather

import "time"

// State is the dashboard state published to consumers. Hourly and Daily are
// never nil.
type State struct {
	Place             Place             `json:"place"`
	MeasurementSystem MeasurementSystem `json:"measurement_system"`
	Loading           bool              `json:"loading"`
	Error             string            `json:"error,omitempty"`
	ErrorKind         *ErrorKind        `json:"error_kind,omitempty"`
	Units             UnitSet           `json:"units"`
	Current           CurrentWeather    `json:"current"`
	Hourly            []Period          `json:"hourly"`
	Daily             []Period          `json:"daily"`
	CycleID           string            `json:"cycle_id,omitempty"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// clone returns a copy that shares no slices with s.
func (s State) clone() State {
	out := s
	out.Hourly = append([]Period(nil), s.Hourly...)
	out.Daily = append([]Period(nil), s.Daily...)
	if out.Hourly == nil {
		out.Hourly = []Period{}
	}
	if out.Daily == nil {
		out.Daily = []Period{}
	}
	if s.ErrorKind != nil {
		k := *s.ErrorKind
		out.ErrorKind = &k
	}
	return out
}

// Snapshot is the data of one completed fetch cycle.
type Snapshot struct {
	CycleID           string            `json:"cycle_id"`
	Place             Place             `json:"place"`
	MeasurementSystem MeasurementSystem `json:"measurement_system"`
	Units             UnitSet           `json:"units"`
	Current           CurrentWeather    `json:"current"`
	Hourly            []Period          `json:"hourly"`
	Daily             []Period          `json:"daily"`
	Timestamp         time.Time         `json:"timestamp"` // always UTC
}
