package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/colgen/internal/errs"
)

func TestParseDatabaseName(t *testing.T) {
	name, err := ParseDatabaseName("root:secret@tcp(localhost:3306)/shop?parseTime=true")
	require.NoError(t, err)
	assert.Equal(t, "shop", name)

	_, err = ParseDatabaseName("root:secret@tcp(localhost:3306)/")
	assert.True(t, errs.IsInvalidInput(err))

	_, err = ParseDatabaseName("not a dsn")
	assert.True(t, errs.IsInvalidInput(err))
}
