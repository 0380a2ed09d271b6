package model

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanBeEdited(t *testing.T) {
	fresh := &Review{CreatedAt: time.Now().Add(-time.Hour)}
	assert.True(t, fresh.CanBeEdited())

	edge := &Review{CreatedAt: time.Now().Add(-6 * 24 * time.Hour)}
	assert.True(t, edge.CanBeEdited())

	stale := &Review{CreatedAt: time.Now().Add(-8 * 24 * time.Hour)}
	assert.False(t, stale.CanBeEdited())
}

func TestCreateReviewRequestValidation(t *testing.T) {
	valid := CreateReviewRequest{
		ProductID: uuid.New(),
		Rating:    4,
		Content:   "Solid product, does what it says.",
	}
	assert.NoError(t, valid.Validate())

	short := valid
	short.Content = "meh"
	assert.Error(t, short.Validate(), "content below minimum length")

	long := valid
	long.Content = strings.Repeat("x", MaxContentLength+1)
	assert.Error(t, long.Validate())

	high := valid
	high.Rating = 6
	assert.Error(t, high.Validate())

	missing := valid
	missing.ProductID = uuid.UUID{}
	assert.Error(t, missing.Validate())
}

func TestModerateReviewRequestValidation(t *testing.T) {
	assert.NoError(t, ModerateReviewRequest{Status: StatusApproved}.Validate())
	assert.NoError(t, ModerateReviewRequest{Status: StatusRejected}.Validate())
	assert.Error(t, ModerateReviewRequest{Status: StatusPending}.Validate(), "moderation must decide")
}
