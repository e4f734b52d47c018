package pgerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	exclusion := fmt.Errorf("insert: %w", &pq.Error{Code: "23P01", Constraint: "appointments_no_overlap"})
	unique := &pq.Error{Code: "23505", Constraint: "payments_appointment_unique"}

	assert.True(t, IsExclusionViolation(exclusion))
	assert.False(t, IsUniqueViolation(exclusion))
	assert.Equal(t, "appointments_no_overlap", Constraint(exclusion))

	assert.True(t, IsUniqueViolation(unique))
	assert.Equal(t, "23505", Code(unique))

	plain := errors.New("boom")
	assert.Equal(t, "", Code(plain))
	assert.Equal(t, "", Constraint(plain))
	assert.False(t, IsExclusionViolation(plain))
}
