// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// resolve turns a grammar source into a readable stream. Accepted sources:
// an io.Reader (used as-is), the string "-" (standard input), a path to an
// existing file, or an inline document string. A string that does not open
// as a file falls back to inline content, so a grammar can be passed
// directly on the command line.
//
// The returned close function is a no-op for sources the caller owns.
func resolve(src any) (r io.Reader, close func() error, name string, err error) {
	noop := func() error { return nil }

	switch v := src.(type) {
	case io.Reader:
		return v, noop, "stream", nil
	case string:
		if v == "-" {
			return os.Stdin, noop, "stdin", nil
		}
		if f, openErr := os.Open(v); openErr == nil {
			return f, f.Close, v, nil
		}
		return strings.NewReader(v), noop, "inline document", nil
	default:
		return nil, noop, "", &LoadError{
			Source: fmt.Sprintf("%T", src),
			Err:    fmt.Errorf("unsupported source type"),
		}
	}
}
