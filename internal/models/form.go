package models

import "time"

// FieldType enumerates the widget types a form field can take
type FieldType string

const (
	FieldText         FieldType = "text"
	FieldNumber       FieldType = "number"
	FieldCheckbox     FieldType = "checkbox"
	FieldDate         FieldType = "date"
	FieldTextarea     FieldType = "textarea"
	FieldSignature    FieldType = "signature"
	FieldEmail        FieldType = "email"
	FieldPhoto        FieldType = "photo"
	FieldSelect       FieldType = "select"
	FieldPhotoGallery FieldType = "photo_gallery"
)

// ValidFieldTypes is the closed set accepted on template writes
var ValidFieldTypes = map[FieldType]bool{
	FieldText: true, FieldNumber: true, FieldCheckbox: true, FieldDate: true,
	FieldTextarea: true, FieldSignature: true, FieldEmail: true,
	FieldPhoto: true, FieldSelect: true, FieldPhotoGallery: true,
}

// FormField is one field definition inside a template. Order is significant.
type FormField struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
	ReadOnly bool      `json:"read_only,omitempty"`
}

// FormTemplate is an ordered list of field definitions. Templates are
// versioned by full replacement only; there is no field-level diffing.
type FormTemplate struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Fields    []FormField `json:"fields" db:"fields"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// FormResponse holds one submission against a template. Values in Data are
// typed per the owning field: string, bool, []string for photo_gallery,
// data-URI string for photo and signature.
type FormResponse struct {
	ID           string         `json:"id" db:"id"`
	TemplateID   string         `json:"template_id" db:"template_id"`
	TechnicianID string         `json:"technician_id" db:"technician_id"`
	MissionID    string         `json:"mission_id,omitempty" db:"mission_id"`
	SubmittedAt  time.Time      `json:"submitted_at" db:"submitted_at"`
	Data         map[string]any `json:"data" db:"data"`
}
