package fetch

import (
	"fmt"
	"log"
	"os"
)

// minPlausibleBytes is a sanity heuristic, not a gate: a full catalog
// of 100k+ games serializes to well over 50MB.
const minPlausibleBytes = 50_000_000

// ValidationError rejects a completed fetch run. The staging file is
// already removed by the time it is returned; the previously published
// file is untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ValidateAndCommit decides whether a finished staging file may
// replace the published consolidated file, and performs the
// remove-then-rename promote when it may.
//
// Reject conditions: fewer than minGames records, or a staging file
// that is not the start of a JSON array. On rejection the staging file
// is deleted and the published file keeps its pre-run bytes.
func ValidateAndCommit(stagingPath, finalPath string, count, minGames int) error {
	log.Printf("[validate] checking download integrity (%d games)", count)

	if count < minGames {
		removeStaging(stagingPath)
		return &ValidationError{
			Reason: fmt.Sprintf("only %d games downloaded (minimum %d), keeping existing data", count, minGames),
		}
	}

	info, err := os.Stat(stagingPath)
	if err != nil {
		return fmt.Errorf("stat staging file: %w", err)
	}

	head := make([]byte, 1)
	f, err := os.Open(stagingPath)
	if err != nil {
		return fmt.Errorf("open staging file: %w", err)
	}
	n, _ := f.Read(head)
	f.Close()
	if n < 1 || head[0] != '[' {
		removeStaging(stagingPath)
		return &ValidationError{Reason: "staging file is not a JSON array"}
	}

	if info.Size() < minPlausibleBytes {
		log.Printf("[validate] warning: file size seems small: %.1fMB", float64(info.Size())/1_000_000)
	}

	// all checks passed, promote staging over the published file
	log.Printf("[validate] all checks passed, committing")
	if err := os.Remove(finalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old consolidated file: %w", err)
	}
	if err := os.Rename(stagingPath, finalPath); err != nil {
		return fmt.Errorf("promote staging file: %w", err)
	}

	log.Printf("[validate] published %s with %d games", finalPath, count)
	return nil
}

func removeStaging(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[validate] could not remove staging file %s: %v", path, err)
	}
}
