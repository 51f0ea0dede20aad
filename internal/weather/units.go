package weather

// UnitSet maps each displayed quantity to its unit string.
type UnitSet struct {
	Temperature   string `json:"temperature"`
	WindSpeed     string `json:"wind_speed"`
	Humidity      string `json:"humidity"`
	Precipitation string `json:"precipitation"`
	UVIndex       string `json:"uv_index"`
	CloudCover    string `json:"cloud_cover"`
	Visibility    string `json:"visibility"`
}

// IsZero reports whether u is the empty unit set.
func (u UnitSet) IsZero() bool {
	return u == UnitSet{}
}

// unitTable is keyed by the "units" value the upstream reports back. A request
// for "auto" is answered with one of these resolved keys.
var unitTable = map[string]UnitSet{
	"metric": {
		Temperature:   "°C",
		WindSpeed:     "m/s",
		Humidity:      "%",
		Precipitation: "mm/h",
		UVIndex:       "",
		CloudCover:    "%",
		Visibility:    "km",
	},
	"us": {
		Temperature:   "°F",
		WindSpeed:     "mph",
		Humidity:      "%",
		Precipitation: "in/h",
		UVIndex:       "",
		CloudCover:    "%",
		Visibility:    "mi",
	},
	"uk": {
		Temperature:   "°C",
		WindSpeed:     "mph",
		Humidity:      "%",
		Precipitation: "mm/h",
		UVIndex:       "",
		CloudCover:    "%",
		Visibility:    "mi",
	},
	"ca": {
		Temperature:   "°C",
		WindSpeed:     "km/h",
		Humidity:      "%",
		Precipitation: "mm/h",
		UVIndex:       "",
		CloudCover:    "%",
		Visibility:    "km",
	},
}

// LookupUnits returns the unit set for a reported unit-system key, or the
// empty set when the key is unknown.
func LookupUnits(key string) UnitSet {
	return unitTable[key]
}
