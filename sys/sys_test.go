package sys_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lesiw.io/fs"
	"lesiw.io/stdio"
	"lesiw.io/stdio/sys"
)

func testBinary(t *testing.T) string {
	binary, err := filepath.Abs(os.Args[0])
	if err != nil {
		t.Fatalf("could not resolve binary path: %v", err)
	}
	return binary
}

// rerun returns a command that runs the named test in a child process.
// Both /bin/sh and cmd.exe accept the double-quoted path.
func rerun(t *testing.T, name string) string {
	return fmt.Sprintf(`"%s" -test.run=%s`, testBinary(t), name)
}

func TestFileRoundTrip(t *testing.T) {
	s, ctx := sys.System(), t.Context()
	name := filepath.Join(t.TempDir(), "data")
	data := bytes.Repeat([]byte("0123456789"), 1000)

	w, err := stdio.Open(ctx, s, name, "w")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := w.WriteBlock(data, 1), len(data); got != want {
		t.Errorf("WriteBlock() = %d, want %d", got, want)
	}
	if got, want := w.Tell(), int64(len(data)); got != want {
		t.Errorf("Tell() = %d, want %d", got, want)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := stdio.Open(ctx, s, name, "r")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got := make([]byte, len(data)+1)
	if n := r.ReadBlock(got, 1); n != len(data) {
		t.Errorf("ReadBlock() = %d, want %d", n, len(data))
	}
	if !bytes.Equal(got[:len(data)], data) {
		t.Error("ReadBlock() content mismatch")
	}
	if !r.Eof() {
		t.Error("Eof() = false, want true")
	}
	if err := r.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestOpenMissing(t *testing.T) {
	s, ctx := sys.System(), t.Context()
	name := filepath.Join(t.TempDir(), "missing")

	for _, mode := range []string{"r", "r+"} {
		_, err := stdio.Open(ctx, s, name, mode)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Open(%q) error = %v, want ErrNotExist", mode, err)
		}
	}
}

func TestAppend(t *testing.T) {
	s, ctx := sys.System(), t.Context()
	name := filepath.Join(t.TempDir(), "log")
	if err := os.WriteFile(name, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := stdio.Open(ctx, s, name, "a")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := f.Tell(), int64(3); got != want {
		t.Errorf("Tell() = %d, want %d", got, want)
	}
	if _, err := f.Write([]byte("de")); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if want := "abcde"; string(got) != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	s, ctx := sys.System(), t.Context()
	name := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(name, []byte("old content"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := stdio.Open(ctx, s, name, "w+")
	if err != nil {
		t.Fatal(err)
	}
	if !f.Eof() {
		t.Error("Eof() = false on truncated file, want true")
	}
	f.Putc('n')
	if err := f.Rewind(); err != nil {
		t.Fatal(err)
	}
	if got, want := f.Getc(), int('n'); got != want {
		t.Errorf("Getc() = %q, want %q", got, want)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if want := "n"; string(got) != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestWorkDir(t *testing.T) {
	s := sys.System()
	dir := t.TempDir()
	ctx := fs.WithWorkDir(t.Context(), dir)

	f, err := stdio.Open(ctx, s, "rel.txt", "w")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte("relative")); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "rel.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "relative"; string(got) != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestIsTerminal(t *testing.T) {
	s, ctx := sys.System(), t.Context()

	f, err := stdio.Open(ctx, s, filepath.Join(t.TempDir(), "f"), "w")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.IsTerminal() {
		t.Error("IsTerminal() = true for a regular file, want false")
	}
}

func TestPopenExitStatus(t *testing.T) {
	if os.Getenv("STDIO_TEST_PROC") == "1" {
		os.Exit(42)
	}
	s := sys.System()
	ctx := stdio.WithEnv(t.Context(), map[string]string{
		"STDIO_TEST_PROC": "1",
	})

	f, err := stdio.Popen(ctx, s, rerun(t, "TestPopenExitStatus"), "r")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.Copy(io.Discard, f); err != nil {
		t.Fatal(err)
	}
	code, err := f.Pclose()
	if err != nil {
		t.Fatalf("Pclose() error: %v", err)
	}
	if got, want := code, 42; got != want {
		t.Errorf("Pclose() = %d, want %d", got, want)
	}
}

func TestPopenRead(t *testing.T) {
	if os.Getenv("STDIO_TEST_PROC") == "1" {
		fmt.Println("hello world")
		os.Exit(0)
	}
	s := sys.System()
	ctx := stdio.WithEnv(t.Context(), map[string]string{
		"STDIO_TEST_PROC": "1",
	})

	f, err := stdio.Popen(ctx, s, rerun(t, "TestPopenRead"), "r")
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Pid(); got <= 0 {
		t.Errorf("Pid() = %d, want > 0", got)
	}
	out, err := io.ReadAll(stdio.NewTextReader(f))
	if err != nil {
		t.Fatal(err)
	}
	if !f.Eof() {
		t.Error("Eof() = false after ReadAll, want true")
	}
	if code, err := f.Pclose(); err != nil || code != 0 {
		t.Errorf("Pclose() = %d, %v, want 0, nil", code, err)
	}
	if got, want := string(out), "hello world\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPopenWrite(t *testing.T) {
	if os.Getenv("STDIO_TEST_PROC") == "1" {
		out, err := os.Create(os.Getenv("STDIO_TEST_OUT"))
		if err != nil {
			os.Exit(2)
		}
		if _, err := io.Copy(out, os.Stdin); err != nil {
			os.Exit(3)
		}
		if err := out.Close(); err != nil {
			os.Exit(4)
		}
		os.Exit(0)
	}
	s := sys.System()
	name := filepath.Join(t.TempDir(), "stdin")
	ctx := stdio.WithEnv(t.Context(), map[string]string{
		"STDIO_TEST_PROC": "1",
		"STDIO_TEST_OUT":  name,
	})
	data := bytes.Repeat([]byte("line of input\n"), 1000)

	f, err := stdio.Popen(ctx, s, rerun(t, "TestPopenWrite"), "w")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := f.WriteBlock(data, 1), len(data); got != want {
		t.Errorf("WriteBlock() = %d, want %d", got, want)
	}
	if code, err := f.Pclose(); err != nil || code != 0 {
		t.Fatalf("Pclose() = %d, %v, want 0, nil", code, err)
	}

	got, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("child read %d bytes, want %d", len(got), len(data))
	}
}

func TestPopenWorkDir(t *testing.T) {
	if os.Getenv("STDIO_TEST_PROC") == "1" {
		wd, err := os.Getwd()
		if err != nil {
			os.Exit(1)
		}
		fmt.Println(wd)
		os.Exit(0)
	}
	s := sys.System()
	dir := t.TempDir()
	ctx := stdio.WithEnv(t.Context(), map[string]string{
		"STDIO_TEST_PROC": "1",
	})
	ctx = fs.WithWorkDir(ctx, dir)

	out, err := stdio.Read(ctx, s, rerun(t, "TestPopenWorkDir"))
	if err != nil {
		t.Fatal(err)
	}
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := filepath.EvalSymlinks(strings.TrimSpace(out))
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("child working directory = %q, want %q", got, want)
	}
}

func TestCloseReportsExitStatus(t *testing.T) {
	if os.Getenv("STDIO_TEST_PROC") == "1" {
		os.Exit(7)
	}
	s := sys.System()
	ctx := stdio.WithEnv(t.Context(), map[string]string{
		"STDIO_TEST_PROC": "1",
	})

	err := stdio.Do(ctx, s, rerun(t, "TestCloseReportsExitStatus"))
	var e *stdio.Error
	if !errors.As(err, &e) {
		t.Fatalf("Do() error = %v, want *stdio.Error", err)
	}
	if got, want := e.Code, 7; got != want {
		t.Errorf("Code = %d, want %d", got, want)
	}
}

func TestNotFound(t *testing.T) {
	s, ctx := sys.System(), t.Context()

	_, err := stdio.Read(ctx, s, "nonexistent-command-xyz")
	if err == nil {
		t.Fatal("Read() error = nil, want error")
	}
	if got, want := stdio.NotFound(err), true; got != want {
		t.Errorf("NotFound(%v) = %v, want %v", err, got, want)
	}
}

func TestPopenInvalidMode(t *testing.T) {
	s, ctx := sys.System(), t.Context()

	_, err := stdio.Popen(ctx, s, "echo", "r+")
	if !errors.Is(err, stdio.ErrMode) {
		t.Errorf("Popen(r+) error = %v, want ErrMode", err)
	}
}
