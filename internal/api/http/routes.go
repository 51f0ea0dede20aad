package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

const searchTimeout = 15 * time.Second

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(service.State())
	})

	v1.Get("/dashboard/current", func(c *fiber.Ctx) error {
		st := service.State()
		view := weather.BuildCurrentView(st.Current, st.Units)
		if !view.Available {
			return fiber.NewError(fiber.StatusNotFound, "no current weather data available")
		}
		return c.JSON(view)
	})

	v1.Put("/dashboard/place", func(c *fiber.Ctx) error {
		var req placeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := service.SetPlace(req.toPlace()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(service.State())
	})

	v1.Put("/dashboard/units", func(c *fiber.Ctx) error {
		var req unitsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := service.SetMeasurementSystem(weather.MeasurementSystem(req.MeasurementSystem)); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(service.State())
	})

	v1.Post("/dashboard/refresh", func(c *fiber.Ctx) error {
		service.Refresh()
		return c.Status(fiber.StatusAccepted).JSON(service.State())
	})

	v1.Get("/dashboard/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		place := weather.Place{ID: req.PlaceID}
		system := weather.MeasurementSystem(req.Units)
		snapshots, err := service.GetRange(place, system, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"place_id":           req.PlaceID,
			"measurement_system": system,
			"from":               req.From,
			"to":                 req.To,
			"snapshots":          snapshots,
		})
	})

	v1.Get("/dashboard/history/latest", func(c *fiber.Ctx) error {
		q := latestQuery{
			PlaceID: c.Query("place_id"),
			Units:   c.Query("units", string(weather.SystemAuto)),
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.GetLatest(weather.Place{ID: q.PlaceID}, weather.MeasurementSystem(q.Units))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested place")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}
		return c.JSON(snapshot)
	})

	v1.Get("/places", func(c *fiber.Ctx) error {
		q := searchQuery{Text: strings.TrimSpace(c.Query("text"))}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "text query parameter is required")
		}

		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		places, err := service.SearchPlaces(ctx, q.Text)
		if err != nil {
			return fiber.NewError(statusForError(err), err.Error())
		}
		return c.JSON(fiber.Map{
			"places": places,
		})
	})
}

// ErrorHandler is the centralized Fiber error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// statusForError maps a weather error kind to the status reported to the browser.
func statusForError(err error) int {
	switch {
	case errors.Is(err, weather.ErrConfiguration):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, weather.ErrUpstream), errors.Is(err, weather.ErrTransport):
		return fiber.StatusBadGateway
	case errors.Is(err, weather.ErrEmptyResponse):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// placeRequest is the body of a place selection.
type placeRequest struct {
	PlaceID string `json:"place_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
}

func (p placeRequest) toPlace() weather.Place {
	return weather.Place{
		ID:   p.PlaceID,
		Name: p.Name,
	}
}

// unitsRequest is the body of a measurement system selection.
type unitsRequest struct {
	MeasurementSystem string `json:"measurement_system" validate:"required,oneof=auto metric us uk ca"`
}

type searchQuery struct {
	Text string `validate:"required"`
}

type latestQuery struct {
	PlaceID string `validate:"required"`
	Units   string `validate:"required,oneof=auto metric us uk ca"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	PlaceID string    `validate:"required"`
	Units   string    `validate:"required,oneof=auto metric us uk ca"`
	From    time.Time `validate:"required"`
	To      time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.PlaceID = c.Query("place_id")
	h.Units = c.Query("units", string(weather.SystemAuto))

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
