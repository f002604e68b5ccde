package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"date", "prize", "cost"},
		Rows: []map[string]string{
			{"date": "2024-01-02", "prize": "Sticker, gold", "cost": "10"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, utf8BOM))
	assert.Equal(t, "date,prize,cost\n2024-01-02,\"Sticker, gold\",10\n", string(out[len(utf8BOM):]))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"date", "prize"},
		Rows:    []map[string]string{{"date": "2024-01-02", "prize": "Candy"}},
	}
	out, err := NewPDFExporter("").Render(data, "Purchases")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterFallsBackWithoutFont(t *testing.T) {
	out, err := NewPDFExporter("/does/not/exist.ttf").Render(Dataset{Headers: []string{"a"}}, "")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderCoinSheetPaginates(t *testing.T) {
	coins := make([]Coin, 0, 40)
	for i := 1; i <= 40; i++ {
		coins = append(coins, Coin{Value: 5, Serial: i})
	}
	out, err := NewPDFExporter("").RenderCoinSheet(coins, "StarCoins")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter("").RenderCoinSheet(nil, "")
	assert.Error(t, err)
}
