package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/madrasa-panel/madrasa/internal/model"
	"github.com/madrasa-panel/madrasa/internal/report"
	"github.com/madrasa-panel/madrasa/internal/store"
)

// importRosters loads student roster files. A file whose content hash matches
// the last import is skipped; a changed file is imported again and students
// whose roll number already exists are left untouched.
func importRosters(db *store.Store, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := sha256sum(data)
		storedHash, err := db.GetImportedFileHash(path)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}
		if storedHash == hash {
			slog.Info("roster file unchanged, skipping", "path", path)
			continue
		}

		var roster []model.StudentImport
		if err := json.Unmarshal(data, &roster); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		added, skipped := 0, 0
		for i, si := range roster {
			st, err := studentFromImport(si)
			if err != nil {
				return fmt.Errorf("%s entry %d: %w", path, i, err)
			}
			if _, err := db.CreateStudent(st); err != nil {
				if errors.Is(err, store.ErrConflict) {
					skipped++
					continue
				}
				return fmt.Errorf("insert student from %s: %w", path, err)
			}
			added++
		}

		if err := db.SetImportedFileHash(path, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", path, err)
		}
		slog.Info("imported students", "path", path, "added", added, "existing", skipped)
	}

	return nil
}

func studentFromImport(si model.StudentImport) (model.Student, error) {
	st := model.Student{
		Name:       strings.TrimSpace(si.Name),
		RollNumber: strings.TrimSpace(si.RollNumber),
		FatherName: strings.TrimSpace(si.FatherName),
		ClassName:  strings.TrimSpace(si.ClassName),
		Phone:      strings.TrimSpace(si.Phone),
	}
	if st.Name == "" || st.RollNumber == "" {
		return model.Student{}, errors.New("name and rollNumber are required")
	}
	if si.AdmissionDate != "" {
		d, err := report.ParseDate(si.AdmissionDate)
		if err != nil {
			return model.Student{}, err
		}
		st.AdmissionDate = d
	}
	return st, nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
