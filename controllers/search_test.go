package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankResultsPrefixBeatsSubstring(t *testing.T) {
	results := []SearchResult{
		{Type: ResultPage, DisplayName: "Understanding your CBC report"},
		{Type: ResultTest, DisplayName: "CBC with ESR"},
		{Type: ResultTest, DisplayName: "CBC"},
	}

	ranked := RankResults(results, "cbc")
	require.Len(t, ranked, 3)
	assert.Equal(t, "CBC", ranked[0].DisplayName)
	assert.Equal(t, "CBC with ESR", ranked[1].DisplayName)
	assert.Equal(t, "Understanding your CBC report", ranked[2].DisplayName)
}

func TestRankResultsCaseInsensitive(t *testing.T) {
	results := []SearchResult{
		{Type: ResultLab, DisplayName: "metro diagnostics"},
		{Type: ResultTest, DisplayName: "Metropolitan Panel"},
	}

	ranked := RankResults(results, "METRO")
	assert.Equal(t, "metro diagnostics", ranked[0].DisplayName)
}

func TestRankResultsStableWithinBand(t *testing.T) {
	results := []SearchResult{
		{Type: ResultTest, DisplayName: "Vitamin D"},
		{Type: ResultPackage, DisplayName: "Vitamin Panel"},
	}

	// Both are prefix matches; input order is preserved
	ranked := RankResults(results, "vitamin")
	assert.Equal(t, ResultTest, ranked[0].Type)
	assert.Equal(t, ResultPackage, ranked[1].Type)
}
