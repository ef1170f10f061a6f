package backend

import (
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/jo-hoe/gotransform/internal/backend/database"
	"github.com/jo-hoe/gotransform/internal/common"
	"github.com/oapi-codegen/nullable"
)

const (
	maxNotesLength = 2000
	maxWeight      = 1000
)

type createPhotoRequest struct {
	Date     string                       `json:"date" validate:"required,timestamp"`
	Type     string                       `json:"type" validate:"required,oneof=front profile back free-pose"`
	Weight   nullable.Nullable[json.Number] `json:"weight"`
	Notes    *string                      `json:"notes" validate:"omitempty,max=2000"`
	Filename string                       `json:"filename" validate:"required,max=255"`
	FileData string                       `json:"fileData" validate:"required,datauri"`
}

// toNewPhoto assumes struct validation already passed.
func (r *createPhotoRequest) toNewPhoto() (database.NewPhoto, []common.FieldIssue) {
	weight, issue := parseWeight(r.Weight)
	if issue != nil {
		return database.NewPhoto{}, []common.FieldIssue{*issue}
	}
	date, err := common.ParseTimestamp(r.Date)
	if err != nil {
		return database.NewPhoto{}, []common.FieldIssue{invalidDate()}
	}
	return database.NewPhoto{
		Date:     date,
		Type:     database.PhotoType(r.Type),
		Weight:   weightValue(weight),
		Notes:    r.Notes,
		Filename: r.Filename,
		FileData: r.FileData,
	}, nil
}

// updatePhotoRequest mirrors createPhotoRequest with every field optional.
// weight and notes may be null to clear them.
type updatePhotoRequest struct {
	Date     *string                      `json:"date" validate:"omitempty,timestamp"`
	Type     *string                      `json:"type" validate:"omitempty,oneof=front profile back free-pose"`
	Weight   nullable.Nullable[json.Number] `json:"weight"`
	Notes    nullable.Nullable[string]      `json:"notes"`
	Filename *string                      `json:"filename" validate:"omitempty,max=255"`
	FileData *string                      `json:"fileData" validate:"omitempty,datauri"`
}

func (r *updatePhotoRequest) toPhotoUpdate() (database.PhotoUpdate, []common.FieldIssue) {
	var issues []common.FieldIssue
	update := database.PhotoUpdate{Notes: r.Notes}

	// omitempty lets an explicit "" through for these
	if r.Filename != nil && *r.Filename == "" {
		issues = append(issues, common.FieldIssue{Path: []string{"filename"}, Code: "too_small", Message: "filename must be at least 1 characters"})
	}
	if r.FileData != nil && *r.FileData == "" {
		issues = append(issues, common.FieldIssue{Path: []string{"fileData"}, Code: "invalid_string", Message: "fileData must be a data URI"})
	}
	if r.Type != nil && *r.Type == "" {
		issues = append(issues, common.FieldIssue{Path: []string{"type"}, Code: "invalid_enum_value", Message: "type must be one of [front profile back free-pose]"})
	}
	if notes, err := r.Notes.Get(); err == nil && utf8.RuneCountInString(notes) > maxNotesLength {
		issues = append(issues, common.FieldIssue{Path: []string{"notes"}, Code: "too_big", Message: fmt.Sprintf("notes must be at most %d characters", maxNotesLength)})
	}
	weight, issue := parseWeight(r.Weight)
	if issue != nil {
		issues = append(issues, *issue)
	}
	update.Weight = weight

	if r.Date != nil {
		date, err := common.ParseTimestamp(*r.Date)
		if err != nil {
			issues = append(issues, invalidDate())
		} else {
			update.Date = &date
		}
	}
	if len(issues) > 0 {
		return database.PhotoUpdate{}, issues
	}

	if r.Type != nil {
		photoType := database.PhotoType(*r.Type)
		update.Type = &photoType
	}
	update.Filename = r.Filename
	update.FileData = r.FileData
	return update, nil
}

// parseWeight rounds to two decimals and enforces 0 < weight < 1000.
// An empty string counts as null.
func parseWeight(raw nullable.Nullable[json.Number]) (nullable.Nullable[float64], *common.FieldIssue) {
	if !raw.IsSpecified() {
		return nil, nil
	}
	number, err := raw.Get()
	if err != nil || number == "" {
		return nullable.NewNullNullable[float64](), nil
	}
	value, err := number.Float64()
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, &common.FieldIssue{Path: []string{"weight"}, Code: "invalid_type", Message: "weight must be a number"}
	}
	value = math.Round(value*100) / 100
	if value <= 0 {
		return nil, &common.FieldIssue{Path: []string{"weight"}, Code: "too_small", Message: "weight must be greater than 0"}
	}
	if value >= maxWeight {
		return nil, &common.FieldIssue{Path: []string{"weight"}, Code: "too_big", Message: fmt.Sprintf("weight must be less than %d", maxWeight)}
	}
	return nullable.NewNullableWithValue(value), nil
}

func weightValue(weight nullable.Nullable[float64]) *float64 {
	value, err := weight.Get()
	if err != nil {
		return nil
	}
	return &value
}

func invalidDate() common.FieldIssue {
	return common.FieldIssue{Path: []string{"date"}, Code: "invalid_date", Message: "date must be an RFC 3339 timestamp or YYYY-MM-DD date"}
}
