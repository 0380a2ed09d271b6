package utils

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredUUIDRejectsZeroValue(t *testing.T) {
	assert.Error(t, validation.Validate(uuid.Nil, RequiredUUID))
	assert.Error(t, validation.Validate("not-a-uuid", RequiredUUID))
	assert.NoError(t, validation.Validate(uuid.New(), RequiredUUID))
}

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "wireless-mouse", GenerateSlug("Wireless Mouse"))
	assert.Equal(t, "cafe-creme", GenerateSlug("Café Crème"))
	assert.Equal(t, "50-off-deal", GenerateSlug("50% Off Deal!"))
}

func TestParseStringToUUID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, ParseStringToUUID(id.String()))
	assert.Equal(t, uuid.Nil, ParseStringToUUID("not-a-uuid"))
	assert.Equal(t, uuid.Nil, ParseStringToUUID(""))
}

func TestUnmarshalTask(t *testing.T) {
	task := asynq.NewTask("demo", []byte(`{"name":"x"}`))

	var payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, UnmarshalTask(task, &payload))
	assert.Equal(t, "x", payload.Name)

	bad := asynq.NewTask("demo", []byte(`{`))
	assert.Error(t, UnmarshalTask(bad, &payload))
}
