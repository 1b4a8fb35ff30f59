package registration

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const MAX_PROOF_SIZE = 4 << 20

var (
	ErrTooLarge   = errors.New("payment proof exceeds 4MB")
	ErrNotImage   = errors.New("payment proof is not an image")
	ErrEmptyProof = errors.New("payment proof is empty")
)

// ReadProof reads an uploaded payment screenshot and encodes it as a data URL.
// The content type comes from the bytes, never from the client.
func ReadProof(r io.Reader, name string) (*PaymentFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, MAX_PROOF_SIZE+1))
	if err != nil {
		return nil, fmt.Errorf("ReadProof failed: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrEmptyProof
	}
	if len(data) > MAX_PROOF_SIZE {
		return nil, ErrTooLarge
	}

	mime := strings.SplitN(mimetype.Detect(data).String(), ";", 2)[0]
	if !strings.HasPrefix(mime, "image/") {
		return nil, ErrNotImage
	}

	return &PaymentFile{
		Base64: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
		Name:   filepath.Base(name),
		Type:   mime,
	}, nil
}

func ProofMessage(err error) string {
	switch {
	case errors.Is(err, ErrTooLarge):
		return "File is too large. Please upload an image smaller than 4MB."
	case errors.Is(err, ErrNotImage):
		return "Please upload an image file (PNG, JPG, GIF or WebP)."
	case errors.Is(err, ErrEmptyProof):
		return "The uploaded file is empty."
	}
	return "Could not read the uploaded file."
}
