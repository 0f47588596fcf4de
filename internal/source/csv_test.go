package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "Name,Amount,Date,Category,Attachment\n" +
		"Drone shots,450.00,2025-04-01,Video Production,drone.pdf\n" +
		"\n" +
		"Lunch,\"32,50\",2025-04-02,client,\n" +
		"Broken,abc,2025-04-03,Other,\n" +
		"Nameless,10,2025-04-04,Other,\n"

	result, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Drafts, 3)
	assert.Equal(t, "Drone shots", result.Drafts[0].Name)
	assert.Equal(t, "drone.pdf", result.Drafts[0].AttachmentRef)
	assert.Equal(t, "32,50", result.Drafts[1].Amount)
	assert.Equal(t, "client", result.Drafts[1].Category)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 5, result.Skipped[0].Index)
	assert.Contains(t, result.Skipped[0].Error(), "line 5")
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("date,name,amount\n2025-01-01,x,1\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}
