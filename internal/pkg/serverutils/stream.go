package serverutils

import (
	"bufio"
	"encoding/json"
	"fmt"
)

// WriteStreamEvent frames one payload as a server-sent event and flushes it
// so the client sees it immediately.
func WriteStreamEvent(w *bufio.Writer, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", body); err != nil {
		return err
	}
	return w.Flush()
}
