package rule

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `{age<25} 1100
{age<25,sex=male} 0110
{income=high} 0011
`

func TestRead(t *testing.T) {
	rules, nsamples, err := Read(strings.NewReader(sampleRules))
	require.NoError(t, err)
	assert.Equal(t, 4, nsamples)
	require.Len(t, rules, 3)
	assert.Equal(t, "{age<25}", rules[0].Features)
	assert.Equal(t, 1, rules[0].Cardinality)
	assert.Equal(t, 2, rules[0].Support)
	assert.Equal(t, 2, rules[1].Cardinality)
	assert.Equal(t, "0011", rules[2].Truthtable.BitString())
}

func TestReadSpacedBitstring(t *testing.T) {
	rules, nsamples, err := Read(strings.NewReader("{a} 1 0 1 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, nsamples)
	assert.Equal(t, "1010", rules[0].Truthtable.BitString())
}

func TestReadErrors(t *testing.T) {
	_, _, err := Read(strings.NewReader("{a}\n"))
	assert.Error(t, err)
	_, _, err = Read(strings.NewReader("{a} 10\n{b} 100\n"))
	assert.Error(t, err)
	_, _, err = Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	rules, _, err := Read(strings.NewReader(sampleRules))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rules))
	again, nsamples, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, nsamples)
	require.Len(t, again, len(rules))
	for i := range rules {
		assert.Equal(t, rules[i].Features, again[i].Features)
		assert.True(t, rules[i].Truthtable.Equal(again[i].Truthtable))
	}
}

func newTestCatalogue(t *testing.T) *Catalogue {
	t.Helper()
	mined, _, err := Read(strings.NewReader(sampleRules))
	require.NoError(t, err)
	labels, _, err := Read(strings.NewReader("{label=0} 0011\n{label=1} 1100\n"))
	require.NoError(t, err)
	c, err := NewCatalogue(mined, labels, nil)
	require.NoError(t, err)
	return c
}

func TestNewCataloguePrependsDefault(t *testing.T) {
	c := newTestCatalogue(t)
	assert.Equal(t, 4, c.NRules())
	assert.Equal(t, 4, c.NSamples())
	def := c.Rule(0)
	assert.Equal(t, DefaultFeatures, def.Features)
	assert.Equal(t, 0, def.Cardinality)
	assert.Equal(t, 4, def.Support)
	assert.Equal(t, "1111", def.Truthtable.BitString())
	assert.Equal(t, 1, c.Rule(1).ID)
	assert.Len(t, c.Mined(), 3)
	assert.False(t, c.HasMinority())
}

func TestNewCatalogueRejectsBadLabels(t *testing.T) {
	mined, _, err := Read(strings.NewReader(sampleRules))
	require.NoError(t, err)

	one, _, err := Read(strings.NewReader("{label=0} 0011\n"))
	require.NoError(t, err)
	_, err = NewCatalogue(mined, one, nil)
	assert.Error(t, err)

	notComplementary, _, err := Read(strings.NewReader("{label=0} 0011\n{label=1} 1101\n"))
	require.NoError(t, err)
	_, err = NewCatalogue(mined, notComplementary, nil)
	assert.Error(t, err)

	wrongWidth, _, err := Read(strings.NewReader("{label=0} 00111\n{label=1} 11000\n"))
	require.NoError(t, err)
	_, err = NewCatalogue(mined, wrongWidth, nil)
	assert.Error(t, err)
}

func TestNewCatalogueRejectsMinorityWidthMismatch(t *testing.T) {
	mined, _, err := Read(strings.NewReader(sampleRules))
	require.NoError(t, err)
	labels, _, err := Read(strings.NewReader("{label=0} 0011\n{label=1} 1100\n"))
	require.NoError(t, err)
	minor, _, err := Read(strings.NewReader("minority 01010\n"))
	require.NoError(t, err)
	_, err = NewCatalogue(mined, labels, &minor[0])
	assert.Error(t, err)
}
