package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxDrainBytes bounds how much of an abandoned body is read before closing,
// enough to let the transport reuse the connection.
const maxDrainBytes = 4 << 10

// DecodeJSON decodes a JSON response body into dest and closes the body.
func DecodeJSON(resp *http.Response, dest interface{}) error {
	defer DrainAndClose(resp.Body)

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// DrainAndClose discards any unread body and closes it.
func DrainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	io.CopyN(io.Discard, body, maxDrainBytes)
	body.Close()
}
