package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GetSimpleText prompts for one line of input and returns it trimmed.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	fmt.Fprintf(w, "%s: ", prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetOptionalInt prompts for an integer; empty input returns 0.
func GetOptionalInt(reader *bufio.Reader, prompt string, w io.Writer) (int, error) {
	text, err := GetSimpleText(reader, prompt, w)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("expected a number: %w", err)
	}
	return n, nil
}
