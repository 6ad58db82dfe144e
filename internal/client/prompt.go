package client

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var ErrNoTerminal = errors.New("licence key not given and stdin is not a terminal")

// test seams
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// PromptKey asks for the licence key on the terminal without echo.
func PromptKey(in *os.File, w io.Writer) (string, error) {
	fd := int(in.Fd())
	if !isTerminal(fd) {
		return "", ErrNoTerminal
	}

	if _, err := fmt.Fprint(w, "Enter licence key: "); err != nil {
		return "", err
	}
	key, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(key)), nil
}
