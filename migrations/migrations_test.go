// AngelaMos | 2026
// migrations_test.go

package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIsSorted(t *testing.T) {
	migrations, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestSchemaCarriesConstraints(t *testing.T) {
	migrations, err := Load()
	require.NoError(t, err)

	schema := migrations[0].SQL
	assert.Contains(t, schema, "ON DELETE CASCADE")
	assert.Contains(t, schema, "WHERE status = 'pending'")
	assert.Contains(t, schema, "product_key    TEXT NOT NULL UNIQUE")
	assert.Contains(t, schema, "mobile            TEXT NOT NULL UNIQUE")
}

func TestProductSearchUsesTrigramIndexes(t *testing.T) {
	migrations, err := Load()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.NotContains(t, migrations[0].SQL, "to_tsvector")

	search := migrations[1].SQL
	assert.Equal(t, "002_product_search", migrations[1].Version)
	assert.Contains(t, search, "CREATE EXTENSION IF NOT EXISTS pg_trgm")
	for _, column := range []string{"phone_name", "brand", "lot_name", "product_key"} {
		assert.Contains(t, search, "("+column+" gin_trgm_ops)")
	}
}
