// Notification buckets accumulated during evaluation and flushed with
// the response. They carry no identity beyond one request.
package notification

import (
	Error "entiq/packages/common/errors"

	json "github.com/json-iterator/go"
)

// The bucket key for request-level issues that are not scoped to any
// entity instance.
const RequestWarningsKey = "request_warnings"

// The bucket key for request-level failures, used when a failed
// operation has no entity instance to attribute the error to.
const RequestKey = "request"

type Item struct {
	Type    Error.Code `json:"type"`
	Message string     `json:"message"`
	Field   string     `json:"field,omitempty"`
}

func ItemFromStatus(status *Error.Status) Item {
	return Item{
		Type:    status.Code(),
		Message: Error.CapMessage(status.Error()),
		Field:   status.Field(),
	}
}

type Bucket struct {
	Errors   []Item `json:"errors"`
	Warnings []Item `json:"warnings"`
}

type Set struct {
	entities        map[string]*Bucket
	requestWarnings []Item
}

func NewSet() *Set {
	return &Set{}
}

func (s *Set) bucket(instanceID string) *Bucket {
	if s.entities == nil {
		s.entities = make(map[string]*Bucket)
	}

	b, ok := s.entities[instanceID]
	if !ok {
		b = &Bucket{Errors: []Item{}, Warnings: []Item{}}
		s.entities[instanceID] = b
	}
	return b
}

func (s *Set) AddError(instanceID string, status *Error.Status) {
	b := s.bucket(instanceID)
	b.Errors = append(b.Errors, ItemFromStatus(status))
}

func (s *Set) AddWarning(instanceID string, status *Error.Status) {
	b := s.bucket(instanceID)
	b.Warnings = append(b.Warnings, ItemFromStatus(status))
}

func (s *Set) AddRequestWarning(status *Error.Status) {
	s.requestWarnings = append(s.requestWarnings, ItemFromStatus(status))
}

func (s *Set) IsEmpty() bool {
	return len(s.entities) == 0 && len(s.requestWarnings) == 0
}

// Wire shape:
//
//	{ "<entityId>": {"errors":[...],"warnings":[...]}, "request_warnings":[...] }
func (s *Set) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.entities)+1)

	for id, bucket := range s.entities {
		out[id] = bucket
	}

	if len(s.requestWarnings) > 0 {
		out[RequestWarningsKey] = s.requestWarnings
	}

	return json.Marshal(out)
}
