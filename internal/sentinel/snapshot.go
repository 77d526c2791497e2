package sentinel

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/sentineldb/sentineldb/internal/logger"
)

// WriteSnapshot materializes the engine's full current state — the active
// decision policy plus the latest value of every live key — to path. It
// writes to a temporary file in the same directory and renames it into
// place, which gives Go's os.Rename guarantee that a partial file is never
// observed at path, rather than truncating an existing snapshot in place
// and relying on flush-then-close ordering to approach the same guarantee.
func WriteSnapshot(path string, policy DecisionPolicy, data map[Key]Value) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &IOError{Op: "snapshot create", Err: err}
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "POLICY SET %s\n", policy.String())

	// Sort keys for deterministic snapshot output — the map has no natural
	// order and tests comparing snapshot bytes need one.
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "SET %s %s\n", k, data[k])
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Op: "snapshot flush", Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Op: "snapshot sync", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "snapshot close", Err: err}
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "snapshot rename", Err: err}
	}

	return nil
}

// ReadLines reads a text file line by line, skipping blank lines. It is
// used for both the snapshot file and the WAL file during recovery; a
// missing file is not an error — it yields no lines.
func ReadLines(path string, log logger.Logger) []string {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("failed to open file for replay", logger.String("path", path), logger.Error(err))
		}
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Warn("error reading file during replay", logger.String("path", path), logger.Error(err))
	}
	return lines
}
