package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-results-service/internal/domain"
)

func entryFromJSON(t *testing.T, raw string) domain.CacheEntry {
	t.Helper()
	var entry domain.CacheEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	return entry
}

func TestWriteCSVSingleEntry(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []domain.CacheEntry{entryFromJSON(t, `{"quiz_id":5,"score":1.0}`)})
	require.NoError(t, err)
	assert.Equal(t, "quiz_id,score\n5,1.0\n", buf.String())
}

func TestWriteCSVAlignsRowsToHeader(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []domain.CacheEntry{
		entryFromJSON(t, `{"quiz_id":5,"user_email":"a@test","score":0.5}`),
		entryFromJSON(t, `{"score":1.0,"quiz_id":6,"user_email":"b, c@test"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "quiz_id,user_email,score\n5,a@test,0.5\n6,\"b, c@test\",1.0\n", buf.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteCSV(&buf, nil), domain.ErrCacheNotFound)
	assert.Zero(t, buf.Len())
}
