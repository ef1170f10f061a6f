package common

import (
	"fmt"

	"github.com/vincent-petithory/dataurl"
)

// DecodeDataURI returns the payload and media type ("image/png") of a data URI.
func DecodeDataURI(uri string) ([]byte, string, error) {
	decoded, err := dataurl.DecodeString(uri)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
	}
	return decoded.Data, decoded.ContentType(), nil
}

// EncodeDataURI builds a base64 data URI for the payload.
func EncodeDataURI(data []byte, mediaType string) string {
	return dataurl.New(data, mediaType).String()
}
