package chat

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const defaultMaxLineLength = 8192

// LineConn frames a net.Conn as newline-delimited text. One goroutine may read
// while another writes.
type LineConn struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	w            *bufio.Writer
	writeTimeout time.Duration
}

func NewLineConn(conn net.Conn, maxLineLength int, writeTimeout time.Duration) *LineConn {
	if maxLineLength <= 0 {
		maxLineLength = defaultMaxLineLength
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, min(4096, maxLineLength)), maxLineLength)
	return &LineConn{
		conn:         conn,
		scanner:      scanner,
		w:            bufio.NewWriter(conn),
		writeTimeout: writeTimeout,
	}
}

// ReadLine returns the next line without its terminator. A last line that is
// not newline-terminated is still returned; io.EOF follows it.
func (c *LineConn) ReadLine() (string, error) {
	if c.scanner.Scan() {
		return strings.TrimSuffix(c.scanner.Text(), "\r"), nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	return "", io.EOF
}

func (c *LineConn) WriteLine(line string) error {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (c *LineConn) Close() error {
	return c.conn.Close()
}
