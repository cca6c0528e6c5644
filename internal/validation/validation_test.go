package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Username string `json:"username" binding:"required,max=10,username"`
	Email    string `json:"email" binding:"required,email"`
	Bio      string `json:"bio" binding:"notblank"`
	Servings *int   `json:"servings" binding:"omitempty,min=1"`
}

// gin's engine reads the binding tag
func validateStruct(s interface{}) error {
	return Engine().Struct(s)
}

func TestFieldErrorsFromValidator(t *testing.T) {
	zero := 0
	err := validateStruct(sample{Username: "bad name!", Email: "nope", Bio: "   ", Servings: &zero})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, []string{"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."}, fields["username"])
	assert.Equal(t, []string{"Enter a valid email address."}, fields["email"])
	assert.Equal(t, []string{"This field may not be blank."}, fields["bio"])
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 1."}, fields["servings"])
}

func TestFieldErrorsRequired(t *testing.T) {
	err := validateStruct(sample{Bio: "hi"})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, []string{"This field is required."}, fields["username"])
	assert.Equal(t, []string{"This field is required."}, fields["email"])
}

func TestFieldErrorsFromJSON(t *testing.T) {
	var dst struct {
		Score int `json:"score"`
	}
	err := json.Unmarshal([]byte(`{"score": "four"}`), &dst)
	require.Error(t, err)

	assert.Equal(t, []string{"A valid integer is required."}, FieldErrors(err)["score"])
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("cook@example.com", "required,email"))
	assert.Error(t, Var("cook@", "required,email"))
	assert.NoError(t, Var("chef.anna+1", "username"))
	assert.Error(t, Var("chef anna", "username"))
}
