package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Select("id", "status").
		From("appointments").
		Where(squirrel.Eq{"business_id": int64(7)}).
		Where(squirrel.Eq{"status": []string{"pending", "confirmed"}}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id, status FROM appointments WHERE business_id = $1 AND status IN ($2,$3)", query)
	assert.Equal(t, []interface{}{int64(7), "pending", "confirmed"}, args)
}

func TestUpdate_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Update("appointments").
		Set("status", "confirmed").
		Where(squirrel.Eq{"id": int64(1)}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE appointments SET status = $1 WHERE id = $2", query)
	assert.Len(t, args, 2)
}
