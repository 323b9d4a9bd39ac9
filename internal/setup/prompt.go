package setup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

func promptYesNo(msg string) (bool, error) {
	return promptYesNoFrom(os.Stdin, msg)
}

func promptYesNoFrom(in io.Reader, msg string) (bool, error) {
	fmt.Fprint(os.Stderr, msg)
	r := bufio.NewReader(in)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	s := strings.TrimSpace(strings.ToLower(line))
	return s == "y" || s == "yes", nil
}
