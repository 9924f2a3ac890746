package stdio_test

import (
	"bytes"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"
	"lesiw.io/fs"
	"lesiw.io/stdio"
	"lesiw.io/stdio/mem"
)

// Distinct streams may be used from different goroutines at once.
func TestManyStreams(t *testing.T) {
	s, ctx := mem.New(), t.Context()
	if err := fs.MkdirAll(ctx, s.FS(), "/tmp"); err != nil {
		t.Fatal(err)
	}

	var g errgroup.Group
	for i := range 16 {
		g.Go(func() error {
			name := fmt.Sprintf("/tmp/stream%d", i)
			data := bytes.Repeat([]byte{byte('a' + i)}, stdio.BufferSize+i)

			w, err := stdio.Open(ctx, s, name, "w")
			if err != nil {
				return err
			}
			if w.WriteBlock(data, 1) != len(data) {
				return fmt.Errorf("%s: write: %w", name, w.Err())
			}
			if err := w.Close(); err != nil {
				return err
			}

			out, err := stdio.Read(ctx, s, "cat "+name)
			if err != nil {
				return err
			}
			if out != string(data) {
				return fmt.Errorf("%s: read back %d bytes, want %d",
					name, len(out), len(data))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
