package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sipsociety/sipcms/internal/store"
)

// ErrUncleanContent marks an audit that found blocks still needing sanitizing.
var ErrUncleanContent = errors.New("unclean content")

const (
	exitInvalidInput = 2
	exitNotFound     = 3
	exitUnclean      = 4
	exitInternal     = 1
)

func ErrorExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, store.ErrInvalidInput):
		return exitInvalidInput
	case errors.Is(err, store.ErrNotFound):
		return exitNotFound
	case errors.Is(err, ErrUncleanContent):
		return exitUnclean
	default:
		if isUsageError(err) {
			return exitInvalidInput
		}
		return exitInternal
	}
}

func FormatError(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		return fmt.Sprintf("Error [invalid-input]: %v", err)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Sprintf("Error [not-found]: %v", err)
	case errors.Is(err, ErrUncleanContent):
		return fmt.Sprintf("Error [unclean]: %v", err)
	default:
		if isUsageError(err) {
			return fmt.Sprintf("Error [invalid-input]: %v", err)
		}
		return fmt.Sprintf("Error [internal]: %v", err)
	}
}

func PrintError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, FormatError(err))
}

// isUsageError catches cobra's flag and argument errors, which are not wrapped.
func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"invalid id",
		"invalid output format",
		"unknown flag",
		"unknown command",
		"unknown shorthand flag",
		"accepts ",
		"requires at least",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
