package einvoice

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"

	"github.com/ucarion/c14n"
)

// Canonicalize devuelve la forma canónica (C14N) del XML.
func Canonicalize(content []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.Entity = map[string]string{}
	dec.CharsetReader = CharsetReader
	return c14n.Canonicalize(dec)
}

// ContentDigest SHA-256 (hex) del XML canónico. Dos XML que solo difieren en
// comillas de atributos o en la forma de los elementos vacíos comparten digest.
// Si el contenido no es canonicalizable (XML recuperado en modo permisivo) se usa el contenido crudo.
func ContentDigest(content []byte) string {
	payload, err := Canonicalize(content)
	if err != nil {
		payload = content
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
