package validator_test

import (
	"testing"

	"microblog/internal/services/dto"
	"microblog/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestValidate_CreateUser(t *testing.T) {
	v := validator.New()

	err := v.Validate(&dto.CreateUserRequest{Email: "not-an-email", Login: "   ", Password: "pw1"})
	require.Error(t, err)

	vErr, ok := err.(*validator.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must be a valid email address", vErr.Errors["email"])
	assert.Equal(t, "Must not be blank", vErr.Errors["login"])
	assert.NotContains(t, vErr.Errors, "password")

	assert.NoError(t, v.Validate(&dto.CreateUserRequest{Email: "a@x.com", Login: "alice", Password: "pw1"}))
}

func TestValidate_RatingValue(t *testing.T) {
	v := validator.New()

	for _, ok := range []int{-1, 0, 1} {
		assert.NoError(t, v.Validate(&dto.RateRequest{Value: intPtr(ok)}), ok)
	}

	err := v.Validate(&dto.RateRequest{Value: intPtr(2)})
	require.Error(t, err)
	assert.Equal(t, "Rating must be -1, 0, or 1", err.(*validator.ValidationError).Errors["value"])

	err = v.Validate(&dto.RateRequest{})
	require.Error(t, err)
	assert.Equal(t, "This field is required", err.(*validator.ValidationError).Errors["value"])
}

func TestValidate_PartialProfileUpdate(t *testing.T) {
	v := validator.New()

	assert.NoError(t, v.Validate(&dto.UpdateProfileRequest{}))

	bad := "nope"
	err := v.Validate(&dto.UpdateProfileRequest{Email: &bad})
	require.Error(t, err)
	assert.Contains(t, err.(*validator.ValidationError).Errors, "email")
}

func TestValidate_SearchQueryUsesFormName(t *testing.T) {
	v := validator.New()

	err := v.Validate(&dto.SearchQuery{})
	require.Error(t, err)
	assert.Contains(t, err.(*validator.ValidationError).Errors, "q")
}
