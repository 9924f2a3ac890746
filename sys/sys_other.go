//go:build !unix && !windows

package sys

import (
	"context"

	"lesiw.io/stdio"
)

func openFile(string, stdio.Mode) (stdio.Handle, error) {
	return nil, stdio.ErrUnsupported
}

func spawn(
	context.Context, string, stdio.Mode, string,
) (stdio.Handle, stdio.Process, error) {
	return nil, nil, stdio.ErrUnsupported
}
