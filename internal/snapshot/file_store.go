package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON document per collection under Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.Dir, collection+".json")
}

func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	collections := map[string]any{
		CollectionPatients:     snap.Patients,
		CollectionDoctors:      snap.Doctors,
		CollectionAppointments: snap.Appointments,
	}
	for name, data := range collections {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.write(name, data); err != nil {
			return err
		}
	}
	return nil
}

// write replaces the collection file through a rename so a reader never
// sees half a document.
func (s *FileStore) write(collection string, data any) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	tmp, err := os.CreateTemp(s.Dir, collection+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := os.Rename(tmp.Name(), s.path(collection)); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}

// Load reads every collection. A missing file is an empty collection, so a
// fresh directory loads as an empty hospital.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	snap := Empty()
	targets := map[string]any{
		CollectionPatients:     &snap.Patients,
		CollectionDoctors:      &snap.Doctors,
		CollectionAppointments: &snap.Appointments,
	}
	for name, dst := range targets {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		raw, err := os.ReadFile(s.path(name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("read %s: %w", name, err)
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", name, err)
		}
	}
	snap.normalize()
	return snap, nil
}

// normalize replaces collections decoded from "null" with empty maps.
func (s *Snapshot) normalize() {
	if s.Patients == nil {
		s.Patients = map[string]PatientRecord{}
	}
	if s.Doctors == nil {
		s.Doctors = map[string]DoctorRecord{}
	}
	if s.Appointments == nil {
		s.Appointments = map[string]AppointmentRecord{}
	}
}
