package validation

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	BookID uint `json:"bookId" binding:"required"`
}

type request struct {
	Name    string  `json:"name" binding:"required,max=5"`
	Email   string  `json:"email,omitempty" binding:"omitempty,email"`
	Pages   int     `json:"pages" binding:"omitempty,min=1"`
	Type    string  `json:"type" binding:"omitempty,oneof=physical digital"`
	Entries []entry `json:"books" binding:"required,min=1,dive"`
}

func TestFieldErrors(t *testing.T) {
	UseJSONFieldNames()

	req := request{
		Name:    "much too long",
		Email:   "nope",
		Pages:   -1,
		Type:    "scroll",
		Entries: []entry{{BookID: 0}},
	}
	err := binding.Validator.ValidateStruct(&req)
	require.Error(t, err)

	fields, ok := FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"name":            "must not exceed 5 characters",
		"email":           "must be a valid email address",
		"pages":           "must be at least 1",
		"type":            "must be one of: physical digital",
		"books[0].bookId": "is required",
	}, fields)
}

func TestFieldErrors_EmptySlice(t *testing.T) {
	UseJSONFieldNames()

	err := binding.Validator.ValidateStruct(&request{Name: "ok", Entries: []entry{}})
	require.Error(t, err)

	fields, ok := FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "must contain at least 1 items", fields["books"])
}

func TestFieldErrors_NotValidation(t *testing.T) {
	fields, ok := FieldErrors(errors.New("unexpected EOF"))
	assert.False(t, ok)
	assert.Nil(t, fields)
}
