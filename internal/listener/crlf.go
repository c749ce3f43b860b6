package listener

import (
	"bytes"
	"io"
)

// lineEndings translates between the shell's "\n" and the network's line
// endings. Telnet sends "\r\n", SSH without a PTY may send a bare "\r".
type lineEndings struct {
	rw io.ReadWriter
}

func newLineEndings(rw io.ReadWriter) io.ReadWriter {
	return &lineEndings{rw: rw}
}

func (l *lineEndings) Read(p []byte) (int, error) {
	n, err := l.rw.Read(p)
	if n == 0 {
		return n, err
	}

	data := bytes.ReplaceAll(p[:n], []byte("\r\n"), []byte("\n"))
	data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
	// Drop NUL padding some telnet clients send after a carriage return.
	data = bytes.ReplaceAll(data, []byte{0}, nil)
	return copy(p, data), err
}

func (l *lineEndings) Write(p []byte) (int, error) {
	_, err := l.rw.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n")))
	// Report the caller's length, not the expanded one.
	return len(p), err
}
