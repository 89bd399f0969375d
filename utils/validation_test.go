package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `validate:"required"`
	Count int    `validate:"min=1,max=10"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(sampleRequest{Name: "ok", Count: 5}))
	})

	t.Run("missing required field reports the field", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Count: 5})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		require.Contains(t, fields, "Name")
		assert.Contains(t, fields["Name"], "required")
	})

	t.Run("range violation reports the bound", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Name: "ok", Count: 0})
		require.Error(t, err)

		fields := GetValidationFields(err)
		require.Contains(t, fields, "Count")
		assert.Contains(t, fields["Count"], "at least 1")
	})
}

func TestGetValidationFieldsOnOtherError(t *testing.T) {
	assert.Nil(t, GetValidationFields(assert.AnError))
	assert.False(t, IsValidationError(assert.AnError))
}
