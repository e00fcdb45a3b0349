package core

import (
	"bytes"
	"io"
	"sync"
)

// SessionState holds what the last send did.
type SessionState struct {
	LastMessage      string
	MessagesSent     int
	LastHookExitCode int
	LastHookStderr   string
}

// StderrCapturer passes writes through to original and, between
// StartCapture and StopCapture, keeps a copy of them.
type StderrCapturer struct {
	original  io.Writer
	buffer    *bytes.Buffer
	mu        sync.Mutex
	capturing bool
}

func NewStderrCapturer(original io.Writer) *StderrCapturer {
	return &StderrCapturer{
		original: original,
	}
}

func (c *StderrCapturer) Write(p []byte) (n int, err error) {
	c.mu.Lock()
	if c.capturing {
		if c.buffer == nil {
			c.buffer = new(bytes.Buffer)
		}
		// 64KB is plenty for a hook's error output
		remaining := 64*1024 - c.buffer.Len()
		if remaining > 0 {
			toWrite := p
			if len(toWrite) > remaining {
				toWrite = toWrite[:remaining]
			}
			c.buffer.Write(toWrite)
		}
	}
	c.mu.Unlock()
	return c.original.Write(p)
}

func (c *StderrCapturer) StartCapture() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capturing = true
	c.buffer = new(bytes.Buffer)
}

func (c *StderrCapturer) StopCapture() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capturing = false
	if c.buffer == nil {
		return ""
	}
	res := c.buffer.String()
	c.buffer = nil
	return res
}
