package server

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// readPIDFile parses a PID file. The second return value is false when
// no usable record exists: a missing file, or content that is not a
// PID. Garbage content counts as no record; a half-written file is
// indistinguishable from a corrupt one.
func readPIDFile(path string) (int32, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrapf(err, "reading PID file %s", path)
	}

	pid, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if err != nil || pid <= 0 {
		return 0, false, nil
	}
	return int32(pid), true, nil
}
