package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/hibiken/asynq"
)

// RequiredUUID rejects the zero UUID. ozzo's Required sees uuid.UUID as a
// non-empty 16-byte array, so uuid.Nil would pass it.
var RequiredUUID = validation.By(func(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("is required")
	}
	return nil
})

// GenerateSlug builds a URL-safe slug from a display name.
func GenerateSlug(input string) string {
	return slug.Make(input)
}

// ParseStringToUUID parses s, returning uuid.Nil on any failure.
func ParseStringToUUID(s string) uuid.UUID {
	uid, err := uuid.Parse(s)
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// UnmarshalTask decodes an asynq task payload into dest.
func UnmarshalTask(t *asynq.Task, dest interface{}) error {
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("unmarshal task %s: %w", t.Type(), err)
	}
	return nil
}
