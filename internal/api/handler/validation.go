package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/weatherwear/weatherwear/internal/api/models"
	"github.com/weatherwear/weatherwear/internal/weather"
)

// validate is shared by all handlers; validator caches struct metadata and is
// safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs struct validation and converts failures to field errors.
func validateStruct(s any) []models.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{{Field: "", Message: err.Error(), Code: "INVALID"}}
	}

	out := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, models.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
			Code:    fieldCode(fe.Tag()),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func fieldCode(tag string) string {
	switch tag {
	case "required":
		return "REQUIRED"
	case "gte", "lte":
		return "OUT_OF_RANGE"
	case "min", "max":
		return "INVALID_LENGTH"
	default:
		return "INVALID"
	}
}

// parseCoordinates reads lat and lon from the query string. NaN and infinite
// values parse but fail the range checks, so only finite coordinates pass.
func parseCoordinates(r *http.Request) (weather.GeoPoint, []models.FieldError) {
	q := r.URL.Query()

	var (
		coords models.Coordinates
		errs   []models.FieldError
	)
	for _, f := range []struct {
		name string
		dst  **float64
	}{
		{"lat", &coords.Lat},
		{"lon", &coords.Lon},
	} {
		raw := strings.TrimSpace(q.Get(f.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, models.FieldError{Field: f.name, Message: "must be a number", Code: "INVALID_NUMBER"})
			continue
		}
		*f.dst = &v
	}
	if len(errs) > 0 {
		return weather.GeoPoint{}, errs
	}

	if errs := validateStruct(coords); len(errs) > 0 {
		return weather.GeoPoint{}, errs
	}
	return weather.GeoPoint{Lat: *coords.Lat, Lon: *coords.Lon}, nil
}
