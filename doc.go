// Package stdio provides buffered file and process streams over raw
// operating system I/O.
//
// A [File] wraps a [Handle] with a fixed buffer of [BufferSize] bytes.
// Files are opened by name with [Open] using one of the classic mode
// strings "r", "r+", "w", "w+", "a", or "a+".
//
//	f, err := stdio.Open(ctx, sys.System(), "notes.txt", "a+")
//
// Handles are created by a [System].
// [lesiw.io/stdio/sys] is a [System] backed by the local host: descriptors
// on POSIX and HANDLEs on Windows.
//
// Other Systems provided by this module:
//   - [lesiw.io/stdio/mem] - in-memory files and commands for examples
//   - [lesiw.io/stdio/mock] - fault injection for tests
//   - [lesiw.io/stdio/sub] - prefixes spawned commands with fixed words
//   - [lesiw.io/stdio/ssh] - runs commands and streams files over SSH
//
// # Reading and writing
//
// [File.Getc] and [File.ReadBlock] fill the buffer with one system call
// at a time. [File.Putc] and [File.WriteBlock] collect bytes in the buffer
// and write it out when it is full, on [File.Flush], [File.Seek], and
// [File.Close]. Files are also an [io.Reader], [io.Writer], and
// [io.Seeker], so they compose with the rest of [io].
//
//	io.Copy(dst, src)
//
// Switching between reading and writing on the same File is allowed.
// Pending writes are flushed before a read, and read-ahead is dropped
// before a write so bytes land where [File.Tell] reports.
//
// # End of stream and errors
//
// Both conditions are sticky. Once a read observes end of stream,
// [File.Eof] reports true and further reads return [EOF] without touching
// the Handle until [File.Seek] clears it. Once any operation fails,
// [File.Err] returns the cause and every later read or write fails
// immediately. Nothing clears the error.
//
// # Process streams
//
// [Popen] runs a command through the system's command interpreter and
// connects a File to its standard output ("r") or standard input ("w").
// [File.Pclose] closes the pipe, waits for the command, and returns its
// exit status.
//
//	f, err := stdio.Popen(ctx, sys.System(), "ls -l", "r")
//	if err != nil {
//	    return err
//	}
//	out, err := io.ReadAll(f)
//	code, perr := f.Pclose()
//
// [Read] and [Do] cover the common cases. [Read] returns the output with
// trailing whitespace removed, like command substitution in a shell.
// Both return an [*Error] when the command exits with a non-zero status.
//
// Environment variables for commands are part of the [context.Context].
// They can be set using [WithEnv] and inspected using [Envs].
// The working directory for relative names and commands is set with
// [lesiw.io/fs.WithWorkDir].
//
// # Tracing
//
// Set [Trace] to receive one line for every Open and Popen.
// [ShTrace] writes them to standard error in the style of sh -x.
//
//	stdio.Trace = stdio.ShTrace
package stdio
