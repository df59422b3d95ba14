package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

var errClipboardUnsupported = errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard, or use --ssh-copy)")

// writeClipboard is swapped out in tests.
var writeClipboard = func(data string) error {
	if clipboard.Unsupported {
		return errClipboardUnsupported
	}
	return clipboard.WriteAll(data)
}

func copyToClipboard(data string) error {
	if err := writeClipboard(data); err != nil {
		if errors.Is(err, errClipboardUnsupported) {
			return err
		}
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

func osc52Sequence(data string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(data))
	seq := fmt.Sprintf("\x1b]52;c;%s\x07", encoded)
	if os.Getenv("TMUX") != "" {
		return "\x1bPtmux;" + seq + "\x1b\\"
	}
	if strings.HasPrefix(os.Getenv("TERM"), "screen") {
		return "\x1bP" + seq + "\x1b\\"
	}
	return seq
}

func copyToOSC52(w io.Writer, data string) error {
	if _, err := io.WriteString(w, osc52Sequence(data)); err != nil {
		return fmt.Errorf("failed to write OSC 52 sequence: %w", err)
	}
	return nil
}
