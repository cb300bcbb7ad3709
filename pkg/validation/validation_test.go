package validation

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Pincode string `json:"pincode" validate:"required,len=6,numeric"`
	Age     *int   `json:"age" validate:"required,gte=0,lte=150"`
	Dose    string `json:"dose_type" validate:"required,oneof=first second"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	age := 200
	err := Struct(New(), &sample{Pincode: "12a", Age: &age, Dose: "third"})

	var fieldErrs Errors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 3)

	byField := map[string]string{}
	for _, fe := range fieldErrs {
		byField[fe.Field] = fe.Message
	}
	assert.Equal(t, "pincode must be exactly 6 characters", byField["pincode"])
	assert.Equal(t, "age must be less than or equal to 150", byField["age"])
	assert.Equal(t, "dose_type must be one of: first second", byField["dose_type"])
}

func TestStruct_Valid(t *testing.T) {
	age := 30
	assert.NoError(t, Struct(New(), &sample{Pincode: "560001", Age: &age, Dose: "first"}))
}

func TestToAppError(t *testing.T) {
	err := Struct(New(), &sample{})
	appErr := ToAppError("Invalid registration", err)

	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
	assert.Equal(t, "Invalid registration", appErr.Message)
	assert.Contains(t, appErr.Details, "errors")
}
