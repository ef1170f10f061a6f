package frontend

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/jo-hoe/gotransform/internal/backend/database"
	"github.com/jo-hoe/gotransform/internal/stats"
	"github.com/labstack/echo/v4"
)

//go:embed views/*.html views/icon.svg
var assetsFS embed.FS

const viewsPattern = "views/*.html"

// Template renders the embedded views by name for echo.
type Template struct {
	templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func newTemplate(dateLayout string) (*Template, error) {
	parsed, err := template.New("").Funcs(templateFuncs(dateLayout)).ParseFS(assetsFS, viewsPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse views: %w", err)
	}
	return &Template{templates: parsed}, nil
}

func templateFuncs(dateLayout string) template.FuncMap {
	return template.FuncMap{
		"formatDate": func(value time.Time) string {
			if value.IsZero() {
				return ""
			}
			return value.UTC().Format(dateLayout)
		},
		"isoDate": func(value time.Time) string {
			return value.UTC().Format("2006-01-02")
		},
		"weight":      formatWeight,
		"signedKg":    formatSignedKg,
		"signedRate":  formatSignedRate,
		"typeLabel":   typeLabel,
		"photoTypes":  func() []database.PhotoType { return database.PhotoTypes },
		"journeyLoss": journeyLoss,
	}
}

func formatWeight(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64) + "kg"
}

// formatSignedKg renders a delta with one decimal and an explicit sign, e.g. +1.5kg.
func formatSignedKg(value *float64) string {
	return formatSigned(value, 1, "kg")
}

// formatSignedRate renders a weekly rate with two decimals, e.g. -0.35kg/week.
func formatSignedRate(value *float64) string {
	return formatSigned(value, 2, "kg/week")
}

// formatSigned never prints a negative zero: values that round to zero have no sign.
func formatSigned(value *float64, decimals int, unit string) string {
	if value == nil {
		return ""
	}
	scale := math.Pow10(decimals)
	rounded := math.Round(*value*scale) / scale
	switch {
	case rounded > 0:
		return fmt.Sprintf("+%.*f%s", decimals, rounded, unit)
	case rounded < 0:
		return fmt.Sprintf("%.*f%s", decimals, rounded, unit)
	default:
		return fmt.Sprintf("%.*f%s", decimals, 0.0, unit)
	}
}

func typeLabel(photoType database.PhotoType) string {
	switch photoType {
	case database.PhotoTypeFront:
		return "Front"
	case database.PhotoTypeProfile:
		return "Profile"
	case database.PhotoTypeBack:
		return "Back"
	case database.PhotoTypeFreePose:
		return "Free pose"
	default:
		return string(photoType)
	}
}

// journeyLoss reports whether the journey lost weight overall.
func journeyLoss(journey stats.Journey) bool {
	return journey.WeightChange != nil && *journey.WeightChange < 0
}
