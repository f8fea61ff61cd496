package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackNews(t *testing.T) {
	items := FallbackNews()
	require.Len(t, items, 3)
	for i, n := range items {
		assert.Equal(t, int64(i+1), n.ID)
		assert.Equal(t, NewsTypeGeneral, n.NewsType)
		assert.Contains(t, n.URL, "https://zakupki.gov.ru/epz/news/")
		assert.NotEmpty(t, n.Title)
	}

	// Each call returns an independent copy.
	items[0].Title = "changed"
	assert.NotEqual(t, "changed", FallbackNews()[0].Title)
}

func TestNewNewsEnvelope(t *testing.T) {
	env := NewNewsEnvelope(nil)
	b, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"total":0}`, string(b))

	env = NewNewsEnvelope(FallbackNews())
	assert.Equal(t, 3, env.Total)
}

func TestFallbackProjectInfo(t *testing.T) {
	b, err := json.Marshal(ProjectInfoEnvelope{Data: FallbackProjectInfo()})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"data":{"procurementsCount":2450,"membersCount":890,"budgetAmount":156000000}}`,
		string(b))
}
