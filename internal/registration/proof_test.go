package registration

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestReadProofImage(t *testing.T) {
	data := pngBytes(t)

	p, err := ReadProof(bytes.NewReader(data), "C:\\fakepath/receipt.png")
	require.NoError(t, err)
	require.Equal(t, "image/png", p.Type)
	require.Equal(t, "receipt.png", p.Name)
	require.True(t, strings.HasPrefix(p.Base64, "data:image/png;base64,"))
}

func TestReadProofSniffsContent(t *testing.T) {
	// A text file renamed to .png is still text.
	_, err := ReadProof(strings.NewReader("hello, not an image"), "receipt.png")
	require.ErrorIs(t, err, ErrNotImage)
}

func TestReadProofLimits(t *testing.T) {
	_, err := ReadProof(bytes.NewReader(nil), "empty.png")
	require.ErrorIs(t, err, ErrEmptyProof)

	big := append(pngBytes(t), make([]byte, MAX_PROOF_SIZE)...)
	_, err = ReadProof(bytes.NewReader(big), "big.png")
	require.ErrorIs(t, err, ErrTooLarge)
	require.Contains(t, ProofMessage(err), "4MB")
}
