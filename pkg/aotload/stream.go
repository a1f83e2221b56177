package aotload

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"airport/models"
)

const maxLineSize = 1 << 20

// Result is one decoded record of a stream. Err wrapping ErrInvalidRecord
// means only this record is bad; any other Err is the last value sent.
type Result struct {
	Line    int
	Airport models.Airport
	Err     error
}

// ReadJSONLines decodes newline-delimited JSON objects from r. Blank lines
// are skipped. A line longer than maxLineSize is reported as an invalid
// record and skipped. The channel is closed at EOF, on a read error or when
// ctx is done.
func ReadJSONLines(ctx context.Context, r io.Reader) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)

		br := bufio.NewReaderSize(r, 64*1024)
		var buf []byte
		line := 0
		for {
			text, tooLong, err := readLine(br, buf)
			buf = text
			if err != nil && !errors.Is(err, io.EOF) {
				send(ctx, out, Result{Line: line + 1, Err: fmt.Errorf("read line %d: %w", line+1, err)})
				return
			}
			if err != nil && len(text) == 0 && !tooLong {
				return
			}

			line++
			if tooLong {
				res := Result{Line: line, Err: fmt.Errorf("%w: line %d exceeds %d bytes", ErrInvalidRecord, line, maxLineSize)}
				if !send(ctx, out, res) {
					return
				}
			} else if trimmed := bytes.TrimSpace(text); len(trimmed) > 0 {
				a, derr := Decode(trimmed)
				if !send(ctx, out, Result{Line: line, Airport: a, Err: derr}) {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

// readLine reads through the next newline, reusing buf. A line over
// maxLineSize is consumed whole and returned empty with tooLong set. err is
// io.EOF when the input ends, possibly together with a final unterminated
// line.
func readLine(br *bufio.Reader, buf []byte) (text []byte, tooLong bool, err error) {
	text = buf[:0]
	for {
		chunk, rerr := br.ReadSlice('\n')
		if !tooLong {
			if len(text)+len(chunk) > maxLineSize {
				tooLong = true
				text = text[:0]
			} else {
				text = append(text, chunk...)
			}
		}
		if !errors.Is(rerr, bufio.ErrBufferFull) {
			return text, tooLong, rerr
		}
	}
}

// ReadCSV decodes an airport-codes CSV whose first row is the header.
func ReadCSV(ctx context.Context, r io.Reader) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)

		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true

		header, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			send(ctx, out, Result{Line: 1, Err: fmt.Errorf("read csv header: %w", err)})
			return
		}
		dec, err := NewCSVDecoder(header)
		if err != nil {
			send(ctx, out, Result{Line: 1, Err: err})
			return
		}

		for {
			row, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				var perr *csv.ParseError
				line := 0
				if errors.As(err, &perr) {
					line = perr.Line
				}
				send(ctx, out, Result{Line: line, Err: fmt.Errorf("read csv: %w", err)})
				return
			}
			line, _ := cr.FieldPos(0)

			a, err := dec.Decode(row)
			if !send(ctx, out, Result{Line: line, Airport: a, Err: err}) {
				return
			}
		}
	}()
	return out
}

func send(ctx context.Context, out chan<- Result, r Result) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
