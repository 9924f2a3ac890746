//go:build check

package stdio_test

import (
	"testing"

	"lesiw.io/stdio/internal/testcheck"
)

func TestCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("static analysis is slow")
	}
	testcheck.Run(t)
}
