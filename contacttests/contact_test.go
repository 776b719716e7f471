package contacttests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestCPFGeneratorDerivesIdentifierFromTime(t *testing.T) {
	g := NewCPFGenerator(fixedClock(1_700_000_123_456))
	assert.Equal(t, "00000123456", g.Next())
	assert.Equal(t, "00000123457", g.Next())
}

func TestCPFGeneratorNeverRepeatsWithinSameMillisecond(t *testing.T) {
	g := NewCPFGenerator(fixedClock(1_700_000_000_000))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		cpf := g.Next()
		require.False(t, seen[cpf], "duplicate cpf %s", cpf)
		seen[cpf] = true
	}
	block := g.NextBlock(30)
	require.Len(t, block, 30)
	for _, cpf := range block {
		require.False(t, seen[cpf], "duplicate cpf %s", cpf)
		seen[cpf] = true
	}
}

func TestCPFGeneratorBlocksAreConsecutive(t *testing.T) {
	g := NewCPFGenerator(fixedClock(42))
	assert.Equal(t, []string{"00000000042", "00000000043", "00000000044"}, g.NextBlock(3))
	assert.Equal(t, "00000000045", g.Next())
	assert.Nil(t, g.NextBlock(0))
}

func TestCPFGeneratorNeverReturnsUnknownCPF(t *testing.T) {
	g := NewCPFGenerator(fixedClock(0))
	assert.NotEqual(t, UnknownCPF, g.Next())
}

func TestCPFSequence(t *testing.T) {
	cpfs, err := CPFSequence("12345678998", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"12345678998", "12345678999", "12345679000"}, cpfs)

	cpfs, err = CPFSequence("007", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"007", "008"}, cpfs)
}

func TestCPFSequenceErrors(t *testing.T) {
	_, err := CPFSequence("", 1)
	assert.Error(t, err)
	_, err = CPFSequence("12a", 1)
	assert.Error(t, err)
	_, err = CPFSequence("98", 3)
	assert.Error(t, err)
}

func TestNumberedContact(t *testing.T) {
	c := NumberedContact(7, "12345678907", "abcd1234")
	assert.Equal(t, "Contact 7", c.Name)
	assert.Equal(t, "(11) 91234-5607", c.Phone)
	assert.Equal(t, "contact7.abcd1234@example.com", c.Email)
	assert.Equal(t, "12345678907", c.CPF)

	assert.Equal(t, "contact7@example.com", NumberedContact(7, "1", "").Email)
}
