package models

import (
	"fmt"
	"strings"
	"time"
)

// RecordType is the object type declared by a source trigger.
type RecordType string

const (
	RecordTypeContact RecordType = "Contact"
	RecordTypeAccount RecordType = "Account"
	RecordTypeLead    RecordType = "Lead"
)

// Well-known fields of a trigger payload.
const (
	FieldType    = "type"
	FieldID      = "ID"
	FieldEmail   = "email"
	FieldWebsite = "website"
)

// Record is one change event delivered by the source CRM: a flat map of
// field name to scalar value. Handlers treat it as read-only.
type Record map[string]any

// Type returns the declared record type, or "" when the field is absent.
func (r Record) Type() RecordType {
	s, _ := r[FieldType].(string)
	return RecordType(s)
}

// ID returns the source identifier of the record.
func (r Record) ID() string {
	v, ok := r[FieldID]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// String returns the value of field when it is present as a non-blank string.
func (r Record) String(field string) (string, bool) {
	s, ok := r[field].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Properties is the property bag written to a destination object.
type Properties map[string]any

// SyncStatus summarizes what happened to a record.
type SyncStatus string

const (
	StatusSynced  SyncStatus = "synced"
	StatusSkipped SyncStatus = "skipped"
	StatusFailed  SyncStatus = "failed"
)

// SyncOutcome describes the processing of a single record. It is returned to
// the trigger caller, counted in metrics and optionally written to the audit log.
type SyncOutcome struct {
	ID           string     `json:"id"`
	Source       string     `json:"source,omitempty"`
	SourceID     string     `json:"source_id"`
	RecordType   string     `json:"record_type"`
	ObjectClass  string     `json:"object_class,omitempty"`
	ObjectID     string     `json:"object_id,omitempty"`
	Status       SyncStatus `json:"status"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	Error        string     `json:"error,omitempty"`
	LookupFailed bool       `json:"lookup_failed,omitempty"`
	ExternalIDs  string     `json:"external_ids,omitempty"`
	ProcessedAt  time.Time  `json:"processed_at"`
}
