package resp

import (
	"fmt"
	"io"
)

// WriteOK writes the simple-string success reply used for SET and DEL.
func WriteOK(w io.Writer) error {
	_, err := io.WriteString(w, "+OK\r\n")
	return err
}

// WriteBulk writes a bulk-string reply carrying a GET result.
func WriteBulk(w io.Writer, value string) error {
	_, err := fmt.Fprintf(w, "$%d\r\n%s\r\n", len(value), value)
	return err
}

// WriteError writes an error reply.
func WriteError(w io.Writer, msg string) error {
	_, err := fmt.Fprintf(w, "-ERR %s\r\n", msg)
	return err
}
