// Package exports builds downloadable CSV files for report and
// dashboard pages. Every field is quoted so spreadsheet imports never
// misparse commas or line breaks inside values.
package exports

import (
	"bufio"
	"io"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// Writer writes CSV rows with every field quoted. encoding/csv only
// quotes fields that need it, which breaks strict importers downstream,
// so quoting is applied unconditionally here.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteRow writes a single record. Embedded double quotes are doubled.
func (cw *Writer) WriteRow(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := cw.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := cw.w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := cw.w.WriteString(strings.ReplaceAll(field, `"`, `""`)); err != nil {
			return err
		}
		if err := cw.w.WriteByte('"'); err != nil {
			return err
		}
	}
	return cw.w.WriteByte('\n')
}

// Flush writes buffered data to the underlying writer.
func (cw *Writer) Flush() error {
	return cw.w.Flush()
}

// StreamAttachment writes rows as a CSV file download on the gin
// response. The filename is escaped for the Content-Disposition header.
func StreamAttachment(c *gin.Context, filename string, rows [][]string) error {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+url.PathEscape(filename)+`"`)

	cw := NewWriter(c.Writer)
	for _, row := range rows {
		if err := cw.WriteRow(row); err != nil {
			return err
		}
	}
	return cw.Flush()
}
