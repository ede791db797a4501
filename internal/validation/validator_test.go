package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	UserID *int64   `json:"userId" validate:"required"`
	Title  *string  `json:"title" validate:"omitempty,notblank,max=5"`
	Score  *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

func ptr[T any](v T) *T { return &v }

func TestStruct(t *testing.T) {
	assert.Nil(t, Struct(&sample{UserID: ptr(int64(1))}))

	errs := Struct(&sample{Title: ptr("  "), Score: ptr(7.0)})
	require.NotNil(t, errs)
	assert.Equal(t, []string{"This field is required."}, errs["userId"])
	assert.Equal(t, []string{"This field may not be blank."}, errs["title"])
	assert.Equal(t, []string{"Ensure this value is less than or equal to 5."}, errs["rating"])

	errs = Struct(&sample{UserID: ptr(int64(1)), Title: ptr("too long")})
	require.NotNil(t, errs)
	assert.Equal(t, []string{"Ensure this field has no more than 5 characters."}, errs["title"])
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("b", "second.")
	fe.Add("a", "first.")
	fe.Merge(Single("a", "again."))
	assert.Equal(t, "a: first. again.; b: second.", fe.Error())
}
