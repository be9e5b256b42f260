package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	at := time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)

	got, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, at, 7)
	require.NoError(t, err)
	assert.Equal(t, "GYM-20260704-0007", got)

	got, err = FormatInvoiceNumber("R{YY}/{SEQ}", at, 123)
	require.NoError(t, err)
	assert.Equal(t, "R26/123", got)

	_, err = FormatInvoiceNumber("", at, 1)
	assert.Error(t, err)
	_, err = FormatInvoiceNumber(DefaultInvoiceNumberTemplate, at, 0)
	assert.Error(t, err)
	_, err = FormatInvoiceNumber("GYM-{BRANCH}-{SEQ}", at, 1)
	assert.Error(t, err)
}

func TestSequenceScope(t *testing.T) {
	at := time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "20260704", SequenceScope(DefaultInvoiceNumberTemplate, at))
	assert.Equal(t, "202607", SequenceScope("INV-{YYYY}{MM}-{SEQ}", at))
	assert.Equal(t, "2026", SequenceScope("INV-{YY}-{SEQ}", at))
	assert.Equal(t, "all", SequenceScope("INV-{SEQ6}", at))
}
