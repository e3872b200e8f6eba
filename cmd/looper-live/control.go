package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/justyntemme/wreath/internal/live"
)

const statusInterval = 100 * time.Millisecond

// controlLoop reads single key presses from a raw terminal and redraws the
// status line until a quit key arrives.
func controlLoop(engine *live.Engine, keys *live.Keys) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() {
		if err := term.Restore(fd, state); err != nil {
			logger.Warn("failed to restore terminal: %v", err)
		}
		fmt.Print("\r\n")
	}()

	fmt.Print(live.Help)
	input := make(chan byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go readKeys(os.Stdin, input, readErr, done)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case key := <-input:
			cmds, quit := keys.Handle(key)
			if quit {
				return nil
			}
			for _, c := range cmds {
				if err := engine.Send(c); err != nil {
					logger.Warn("%s: %v", c.Kind, err)
				}
			}
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read keys: %w", err)
		case <-ticker.C:
			fmt.Printf("\r%s  load %4.1f%%\x1b[K", engine.Status(), engine.Meter().Load()*100)
		}
	}
}

// readKeys forwards bytes from r until a read fails or done is closed.
func readKeys(r io.Reader, keys chan<- byte, errs chan<- error, done <-chan struct{}) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case keys <- b:
			case <-done:
				return
			}
		}
		if err != nil {
			errs <- err
			return
		}
	}
}
