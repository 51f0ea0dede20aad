package weather

import "math"

// Widget is one labelled reading shown next to the current temperature.
type Widget struct {
	ID    int    `json:"id"`
	Icon  string `json:"icon"`
	Name  string `json:"name"`
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// CurrentView is CurrentWeather shaped for display: values rounded and
// paired with their unit strings.
type CurrentView struct {
	Available   bool     `json:"available"`
	Temperature int      `json:"temperature"`
	FeelsLike   int      `json:"feels_like"`
	TempUnit    string   `json:"temperature_unit"`
	Summary     string   `json:"summary"`
	IconNum     int      `json:"icon_num"`
	Widgets     []Widget `json:"widgets"`
}

const noSummary = "No description available"

// BuildCurrentView shapes a reading for display. Units missing from the set
// fall back to metric-ish defaults so a partial unit table still renders.
func BuildCurrentView(c CurrentWeather, units UnitSet) CurrentView {
	if c.IsZero() {
		return CurrentView{Widgets: []Widget{}}
	}

	summary := c.Summary
	if summary == "" {
		summary = noSummary
	}

	return CurrentView{
		Available:   true,
		Temperature: round(c.Temperature),
		FeelsLike:   round(c.FeelsLike),
		TempUnit:    unitOr(units.Temperature, "°C"),
		Summary:     summary,
		IconNum:     c.IconNum,
		Widgets: []Widget{
			{ID: 0, Icon: "droplet", Name: "Precipitation", Value: round(c.Precipitation.Total), Unit: unitOr(units.Precipitation, "mm")},
			{ID: 1, Icon: "wind", Name: "Wind", Value: round(c.Wind.Speed), Unit: unitOr(units.WindSpeed, "km/h")},
			{ID: 2, Icon: "moisture", Name: "Humidity", Value: round(c.Humidity), Unit: unitOr(units.Humidity, "%")},
			{ID: 3, Icon: "sunglasses", Name: "UV index", Value: round(c.UVIndex), Unit: units.UVIndex},
			{ID: 4, Icon: "clouds-fill", Name: "Clouds cover", Value: round(c.CloudCover), Unit: unitOr(units.CloudCover, "%")},
			{ID: 5, Icon: "eye", Name: "Visibility", Value: round(c.Visibility), Unit: unitOr(units.Visibility, "km")},
		},
	}
}

func round(m Measure) int {
	return int(math.Round(float64(m)))
}

func unitOr(unit, def string) string {
	if unit == "" {
		return def
	}
	return unit
}
