package execution

import (
	"errors"
	"fmt"
	"os"
)

// Bounds for the command line length of one batch.
const (
	minArgMax = 1 << 12
	maxArgMax = 1 << 17
)

// ErrArgumentTooLong is returned when a single filename cannot fit.
var ErrArgumentTooLong = errors.New("argument list too long")

// MaxCommandLength estimates the command line budget left after the
// environment, within [4 KiB, 128 KiB].
func MaxCommandLength(env []string) int {
	size := 0
	for _, kv := range env {
		size += len(kv) + 1
	}
	return min(max(maxArgMax-2048-size, minArgMax), maxArgMax)
}

// Partition splits files into batches appended to cmd. Each batch fits
// maxLength and holds at most len(files)/concurrency files, so there are at
// least concurrency batches when enough files exist. An empty file list
// yields cmd alone.
func Partition(cmd, files []string, concurrency, maxLength int) ([][]string, error) {
	cmdLen := 0
	for _, arg := range cmd {
		cmdLen += len(arg) + 1
	}

	concurrency = max(concurrency, 1)
	maxArgs := max(1, len(files)/concurrency)

	var batches [][]string
	var batch []string
	total := cmdLen
	for i := 0; i < len(files); {
		arg := files[i]
		argLen := len(arg) + 1
		switch {
		case total+argLen <= maxLength && len(batch) < maxArgs:
			batch = append(batch, arg)
			total += argLen
			i++
		case len(batch) == 0:
			return nil, fmt.Errorf("%w: %s", ErrArgumentTooLong, arg)
		default:
			batches = append(batches, join(cmd, batch))
			batch = nil
			total = cmdLen
		}
	}
	return append(batches, join(cmd, batch)), nil
}

func join(cmd, files []string) []string {
	out := make([]string, 0, len(cmd)+len(files))
	return append(append(out, cmd...), files...)
}

// hookEnv is the environment every hook process starts with.
func hookEnv(extra []string) []string {
	return append(append(os.Environ(), "PRE_COMMIT=1"), extra...)
}
