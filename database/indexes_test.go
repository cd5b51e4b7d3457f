package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestKPIValueUniqueIndex(t *testing.T) {
	indexes := indexModels()[CollectionKPIValues]
	require.NotEmpty(t, indexes)

	unique := indexes[0]
	assert.Equal(t, bson.D{
		{Key: "kpi_id", Value: 1},
		{Key: "period_start", Value: 1},
		{Key: "period_end", Value: 1},
	}, unique.Keys)
	require.NotNil(t, unique.Options.Unique)
	assert.True(t, *unique.Options.Unique)
}

func TestEveryCollectionHasIndexes(t *testing.T) {
	models := indexModels()
	for _, name := range []string{
		CollectionUsers, CollectionDashboards, CollectionKPIs, CollectionKPIValues,
		CollectionActionPlans, CollectionComments, CollectionImportJobs,
	} {
		assert.NotEmpty(t, models[name], name)
	}
}
