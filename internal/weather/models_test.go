package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMeasureAcceptsNumberOrTotalObject(t *testing.T) {
	var p Period
	body := `{
		"date": "2024-05-01T13:00:00",
		"weather": "partly_sunny",
		"temperature": 18.4,
		"cloud_cover": {"total": 35},
		"precipitation": {"total": 0.2, "type": "rain"},
		"wind": {"speed": 4.1, "dir": "SW", "angle": 225},
		"humidity": null
	}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Temperature != 18.4 {
		t.Errorf("expected temperature 18.4, got %v", p.Temperature)
	}
	if p.CloudCover != 35 {
		t.Errorf("expected cloud cover 35, got %v", p.CloudCover)
	}
	if p.Precipitation.Total != 0.2 || p.Precipitation.Type != "rain" {
		t.Errorf("unexpected precipitation: %+v", p.Precipitation)
	}
	if p.Humidity != 0 {
		t.Errorf("expected null humidity to decode as 0, got %v", p.Humidity)
	}

	ts, err := p.Time()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC); !ts.Equal(want) {
		t.Errorf("expected %v, got %v", want, ts)
	}
}

func TestMeasureRejectsStrings(t *testing.T) {
	var m Measure
	if err := json.Unmarshal([]byte(`"warm"`), &m); err == nil {
		t.Fatal("expected error for string measure")
	}
}

func TestPeriodTime(t *testing.T) {
	daily := Period{Day: "2024-05-02"}
	ts, err := daily.Time()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Day() != 2 || ts.Hour() != 0 {
		t.Errorf("unexpected daily timestamp %v", ts)
	}

	if _, err := (Period{}).Time(); err == nil {
		t.Error("expected error for period without timestamp")
	}
}

func TestCurrentWeatherIsZero(t *testing.T) {
	if !(CurrentWeather{}).IsZero() {
		t.Error("zero value should be empty")
	}
	if (CurrentWeather{Summary: "Sunny"}).IsZero() {
		t.Error("reading with a summary should not be empty")
	}
}

func TestParseMeasurementSystem(t *testing.T) {
	for _, s := range []string{"auto", "metric", "us", "uk", "ca"} {
		if _, err := ParseMeasurementSystem(s); err != nil {
			t.Errorf("%s: unexpected error: %v", s, err)
		}
	}
	if _, err := ParseMeasurementSystem("imperial"); err == nil {
		t.Error("expected error for imperial")
	}
}

func TestLookupUnits(t *testing.T) {
	us := LookupUnits("us")
	if us.Temperature != "°F" || us.WindSpeed != "mph" || us.Visibility != "mi" {
		t.Errorf("unexpected us units: %+v", us)
	}
	if !LookupUnits("auto").IsZero() {
		t.Error("unresolved key should map to the empty unit set")
	}
	if !LookupUnits("").IsZero() {
		t.Error("empty key should map to the empty unit set")
	}
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("cycle: %w", &Error{Kind: KindUpstream, Op: "hourly", Status: 503})

	if !errors.Is(err, ErrUpstream) {
		t.Error("expected errors.Is to match upstream sentinel")
	}
	if errors.Is(err, ErrTransport) {
		t.Error("upstream error must not match transport sentinel")
	}
	if KindOf(err) != KindUpstream || StatusOf(err) != 503 {
		t.Errorf("unexpected kind %v / status %d", KindOf(err), StatusOf(err))
	}
	if got, want := err.Error(), "cycle: hourly: api request failed with status 503"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain errors should be unknown")
	}

	b, _ := json.Marshal(KindEmptyResponse)
	if string(b) != `"empty_response"` {
		t.Errorf("unexpected kind encoding %s", b)
	}
}
