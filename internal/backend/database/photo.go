package database

import (
	"sort"
	"time"

	"github.com/oapi-codegen/nullable"
)

type PhotoType string

const (
	PhotoTypeFront    PhotoType = "front"
	PhotoTypeProfile  PhotoType = "profile"
	PhotoTypeBack     PhotoType = "back"
	PhotoTypeFreePose PhotoType = "free-pose"
)

// PhotoTypes lists the accepted photo types in display order.
var PhotoTypes = []PhotoType{PhotoTypeFront, PhotoTypeProfile, PhotoTypeBack, PhotoTypeFreePose}

func (t PhotoType) Valid() bool {
	for _, known := range PhotoTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Photo is a stored progress photo. FileData holds the image as a data URI.
type Photo struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Type      PhotoType `json:"type"`
	Weight    *float64  `json:"weight"`
	Notes     *string   `json:"notes"`
	Filename  string    `json:"filename"`
	FileData  string    `json:"fileData"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPhoto holds the creatable fields of a Photo.
type NewPhoto struct {
	Date     time.Time
	Type     PhotoType
	Weight   *float64
	Notes    *string
	Filename string
	FileData string
}

// PhotoUpdate is a partial update. Nil pointers and unspecified nullables are left
// untouched; a null nullable clears the field.
type PhotoUpdate struct {
	Date     *time.Time
	Type     *PhotoType
	Weight   nullable.Nullable[float64]
	Notes    nullable.Nullable[string]
	Filename *string
	FileData *string
}

// IsEmpty reports whether the update would change nothing.
func (u PhotoUpdate) IsEmpty() bool {
	return u.Date == nil && u.Type == nil && !u.Weight.IsSpecified() && !u.Notes.IsSpecified() && u.Filename == nil && u.FileData == nil
}

func (u PhotoUpdate) applyTo(photo *Photo) {
	if u.Date != nil {
		photo.Date = *u.Date
	}
	if u.Type != nil {
		photo.Type = *u.Type
	}
	if u.Weight.IsSpecified() {
		photo.Weight = nullableValue(u.Weight)
	}
	if u.Notes.IsSpecified() {
		photo.Notes = nullableValue(u.Notes)
	}
	if u.Filename != nil {
		photo.Filename = *u.Filename
	}
	if u.FileData != nil {
		photo.FileData = *u.FileData
	}
}

func newPhotoRecord(id string, input NewPhoto, createdAt time.Time) *Photo {
	return &Photo{
		ID:        id,
		Date:      input.Date,
		Type:      input.Type,
		Weight:    clonePtr(input.Weight),
		Notes:     clonePtr(input.Notes),
		Filename:  input.Filename,
		FileData:  input.FileData,
		CreatedAt: createdAt,
	}
}

// Clone returns a deep copy so callers never share pointer fields with a store.
func (p *Photo) Clone() *Photo {
	if p == nil {
		return nil
	}
	c := *p
	c.Weight = clonePtr(p.Weight)
	c.Notes = clonePtr(p.Notes)
	return &c
}

// SortByDateDesc orders photos newest first; equal dates fall back to newest insertion first.
func SortByDateDesc(photos []*Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		if !photos[i].Date.Equal(photos[j].Date) {
			return photos[i].Date.After(photos[j].Date)
		}
		return photos[i].CreatedAt.After(photos[j].CreatedAt)
	})
}

// SortByDateAsc orders photos oldest first.
func SortByDateAsc(photos []*Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		if !photos[i].Date.Equal(photos[j].Date) {
			return photos[i].Date.Before(photos[j].Date)
		}
		return photos[i].CreatedAt.Before(photos[j].CreatedAt)
	})
}

// nullableValue returns nil for a null or unspecified value.
func nullableValue[T any](n nullable.Nullable[T]) *T {
	v, err := n.Get()
	if err != nil {
		return nil
	}
	return &v
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
