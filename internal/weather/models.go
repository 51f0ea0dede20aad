package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// MeasurementSystem is the unit convention requested from the upstream API.
type MeasurementSystem string

const (
	SystemAuto   MeasurementSystem = "auto"
	SystemMetric MeasurementSystem = "metric"
	SystemUS     MeasurementSystem = "us"
	SystemUK     MeasurementSystem = "uk"
	SystemCA     MeasurementSystem = "ca"
)

// Valid reports whether m is one of the systems the upstream understands.
func (m MeasurementSystem) Valid() bool {
	switch m {
	case SystemAuto, SystemMetric, SystemUS, SystemUK, SystemCA:
		return true
	default:
		return false
	}
}

// ParseMeasurementSystem converts a raw value into a MeasurementSystem.
func ParseMeasurementSystem(s string) (MeasurementSystem, error) {
	m := MeasurementSystem(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown measurement system %q", s)
	}
	return m, nil
}

// Endpoint names one of the upstream weather sections.
type Endpoint string

const (
	EndpointCurrent Endpoint = "current"
	EndpointHourly  Endpoint = "hourly"
	EndpointDaily   Endpoint = "daily"
)

// Valid reports whether e is a weather endpoint (find_places is not one).
func (e Endpoint) Valid() bool {
	return e == EndpointCurrent || e == EndpointHourly || e == EndpointDaily
}

// Place is a geocoded location identified by an opaque upstream place id.
// Only ID and Name are required; the rest is filled in by place search.
type Place struct {
	ID       string `json:"place_id"`
	Name     string `json:"name"`
	Country  string `json:"country,omitempty"`
	AdmArea1 string `json:"adm_area1,omitempty"`
	AdmArea2 string `json:"adm_area2,omitempty"`
	Lat      string `json:"lat,omitempty"`
	Lon      string `json:"lon,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Key returns a canonical string key for indexing this place with a unit system.
func (p Place) Key(system MeasurementSystem) string {
	return p.ID + ":" + string(system)
}

// Measure is a numeric reading. The upstream sends some of them either as a
// bare number or as an object carrying a "total" field.
type Measure float64

func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if data[0] == '{' {
		var obj struct {
			Total *float64 `json:"total"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Total != nil {
			*m = Measure(*obj.Total)
		} else {
			*m = 0
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("measure: %w", err)
	}
	*m = Measure(f)
	return nil
}

// Wind describes wind speed and direction.
type Wind struct {
	Speed Measure `json:"speed"`
	Gusts Measure `json:"gusts,omitempty"`
	Angle Measure `json:"angle,omitempty"`
	Dir   string  `json:"dir,omitempty"`
}

// Precipitation describes the amount and kind of precipitation.
type Precipitation struct {
	Total Measure `json:"total"`
	Type  string  `json:"type,omitempty"`
}

// CurrentWeather holds the conditions reported for a single moment.
// The zero value is the empty reading.
type CurrentWeather struct {
	Icon          string        `json:"icon,omitempty"`
	IconNum       int           `json:"icon_num,omitempty"`
	Summary       string        `json:"summary,omitempty"`
	Temperature   Measure       `json:"temperature"`
	FeelsLike     Measure       `json:"feels_like"`
	WindChill     Measure       `json:"wind_chill,omitempty"`
	DewPoint      Measure       `json:"dew_point,omitempty"`
	Wind          Wind          `json:"wind"`
	Precipitation Precipitation `json:"precipitation"`
	CloudCover    Measure       `json:"cloud_cover"`
	Pressure      Measure       `json:"pressure,omitempty"`
	UVIndex       Measure       `json:"uv_index"`
	Humidity      Measure       `json:"humidity"`
	Visibility    Measure       `json:"visibility"`
}

// IsZero reports whether c carries no data.
func (c CurrentWeather) IsZero() bool {
	return c == CurrentWeather{}
}

const (
	hourlyLayout = "2006-01-02T15:04:05"
	dailyLayout  = "2006-01-02"
)

// Period is one entry of an hourly or daily forecast series.
// Hourly entries carry Date, daily entries carry Day.
type Period struct {
	Date    string `json:"date,omitempty"`
	Day     string `json:"day,omitempty"`
	Weather string `json:"weather,omitempty"`
	CurrentWeather
	TemperatureMin Measure         `json:"temperature_min,omitempty"`
	TemperatureMax Measure         `json:"temperature_max,omitempty"`
	AllDay         *CurrentWeather `json:"all_day,omitempty"`
}

// Time parses the period's timestamp. The upstream sends local wall-clock
// time without an offset, so the result carries the UTC location.
func (p Period) Time() (time.Time, error) {
	switch {
	case p.Date != "":
		return time.Parse(hourlyLayout, p.Date)
	case p.Day != "":
		return time.Parse(dailyLayout, p.Day)
	default:
		return time.Time{}, fmt.Errorf("period has no timestamp")
	}
}

// Series wraps the "data" list of an hourly or daily section.
type Series struct {
	Data []Period `json:"data"`
}

// Response is the decoded body of a current, hourly or daily call.
// Which section is set depends on the endpoint requested.
type Response struct {
	Lat       string          `json:"lat,omitempty"`
	Lon       string          `json:"lon,omitempty"`
	Elevation float64         `json:"elevation,omitempty"`
	Timezone  string          `json:"timezone,omitempty"`
	Units     string          `json:"units"`
	Current   *CurrentWeather `json:"current,omitempty"`
	Hourly    *Series         `json:"hourly,omitempty"`
	Daily     *Series         `json:"daily,omitempty"`
}
