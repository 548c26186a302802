package storage_test

import (
	"testing"

	"github.com/sampaiobrenner/bookstore/internal/adapter/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLDB(t *testing.T) {
	t.Run("MalformedDSNFails", func(t *testing.T) {
		_, err := storage.NewSQLDB(t.Context(), "not-a-dsn")
		require.Error(t, err)
		assert.ErrorContains(t, err, "invalid dsn")
	})
}
