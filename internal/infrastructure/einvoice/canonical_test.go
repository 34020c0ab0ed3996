package einvoice_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/jhoicas/compliance-api/internal/infrastructure/einvoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_NormalizaAtributosYVacios(t *testing.T) {
	a, err := einvoice.Canonicalize([]byte(`<eInvoice version='1'><buyerReference/></eInvoice>`))
	require.NoError(t, err)
	b, err := einvoice.Canonicalize([]byte(`<eInvoice version="1"><buyerReference></buyerReference></eInvoice>`))
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.Equal(t,
		einvoice.ContentDigest([]byte(`<eInvoice version='1'><buyerReference/></eInvoice>`)),
		einvoice.ContentDigest([]byte(`<eInvoice version="1"><buyerReference></buyerReference></eInvoice>`)))
}

func TestContentDigest_CambiaConElContenido(t *testing.T) {
	d1 := einvoice.ContentDigest([]byte(`<eInvoice><grandTotal>119.00</grandTotal></eInvoice>`))
	d2 := einvoice.ContentDigest([]byte(`<eInvoice><grandTotal>119.01</grandTotal></eInvoice>`))

	assert.NotEqual(t, d1, d2)
	assert.Len(t, d1, 64)
}

func TestContentDigest_XMLMalFormadoUsaBytesCrudos(t *testing.T) {
	raw := []byte(`<eInvoice><buyerReference>A & B</buyerReference></eInvoice>`)
	sum := sha256.Sum256(raw)

	assert.Equal(t, hex.EncodeToString(sum[:]), einvoice.ContentDigest(raw))
}
