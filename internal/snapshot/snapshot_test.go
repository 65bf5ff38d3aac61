package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/hospital"
	"github.com/hackgods/clinic-scheduling/internal/outcome"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

func mustWindow(t *testing.T, s string) schedule.Window {
	t.Helper()
	w, err := schedule.ParseWindow(s)
	require.NoError(t, err)
	return w
}

// populated builds a hospital with at least one record in every state the
// snapshot has to carry.
func populated(t *testing.T) *hospital.Hospital {
	t.Helper()
	ctx := context.Background()
	h := hospital.New(hospital.Info{Name: "City Hospital"}, hospital.Options{})

	jane, err := h.AddPatient(ctx, hospital.PatientInput{Name: "Jane Roe", Age: 34, Gender: "F", Phone: "555-0101", BloodGroup: "O+"})
	require.NoError(t, err)
	john, err := h.AddPatient(ctx, hospital.PatientInput{Name: "John Doe", Age: 51, Gender: "M", Phone: "555-0102"})
	require.NoError(t, err)
	require.NoError(t, h.UpdateMedicalHistory(ctx, jane.ID, "asthma"))
	_, err = h.AddPrescription(ctx, jane.ID, hospital.Prescription{Doctor: "Ada Smith", Medicine: "Salbutamol", Dosage: "2 puffs", Duration: "7 days"})
	require.NoError(t, err)
	require.NoError(t, h.DeactivatePatient(ctx, john.ID))

	ada, err := h.AddDoctor(ctx, hospital.DoctorInput{Name: "Ada Smith", Specialization: "Cardiology", Phone: "555-0200", Department: "Cardiology"})
	require.NoError(t, err)
	_, err = h.SetConsultationFee(ctx, ada.ID, decimal.RequireFromString("120.50"))
	require.NoError(t, err)

	morning, err := h.AddSlot(ctx, ada.ID, "2024-01-01", mustWindow(t, "09:00-10:00"), 3)
	require.NoError(t, err)
	_, err = h.AddSlot(ctx, ada.ID, "2024-01-01", mustWindow(t, "10:00-11:00"), 1)
	require.NoError(t, err)
	_, err = h.AddSlot(ctx, ada.ID, "2024-01-02", mustWindow(t, "14:00-15:00"), 2)
	require.NoError(t, err)
	require.NoError(t, h.BookSlot(ctx, ada.ID, "2024-01-01", morning, jane.ID))

	open, err := h.CreateAppointment(ctx, appointment.Details{
		PatientID: jane.ID, DoctorID: ada.ID, Date: "2024-01-01", Window: mustWindow(t, "09:00-09:30"), Type: "Regular",
	})
	require.NoError(t, err)
	_, err = h.ConfirmAppointment(ctx, open.ID)
	require.NoError(t, err)

	done, err := h.CreateAppointment(ctx, appointment.Details{
		PatientID: jane.ID, DoctorID: ada.ID, Date: "2023-12-01", Window: mustWindow(t, "11:00-11:30"), Type: "follow-up",
	})
	require.NoError(t, err)
	_, err = h.ConfirmAppointment(ctx, done.ID)
	require.NoError(t, err)
	_, err = h.StartAppointment(ctx, done.ID)
	require.NoError(t, err)
	res, err := h.AttachDiagnosis(ctx, done.ID, "mild asthma")
	require.NoError(t, err)
	require.True(t, res.Ok())
	_, err = h.CompleteAppointment(ctx, done.ID)
	require.NoError(t, err)
	res, err = h.SetFollowUpDate(ctx, done.ID, "2024-02-01")
	require.NoError(t, err)
	require.True(t, res.Ok())
	res, err = h.SetAppointmentCost(ctx, done.ID, decimal.RequireFromString("80.25"))
	require.NoError(t, err)
	require.True(t, res.Ok())

	return h
}

func TestExportImportRoundTrip(t *testing.T) {
	h := populated(t)
	first := Export(h)

	require.Len(t, first.Patients, 2)
	require.Len(t, first.Doctors, 1)
	require.Len(t, first.Appointments, 2)

	restored, err := Import(first, h.Info(), hospital.Options{})
	require.NoError(t, err)

	assert.Equal(t, first, Export(restored))
}

func TestImportKeepsIDsAndState(t *testing.T) {
	h := populated(t)
	snap := Export(h)

	restored, err := Import(snap, h.Info(), hospital.Options{})
	require.NoError(t, err)

	doc := h.Doctors()[0]
	got, err := restored.Doctor(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "120.5", got.ConsultationFee.String())
	assert.Equal(t, 3, got.Schedule.SlotCount())

	avail, err := restored.AvailableSlots(doc.ID, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, avail, 2)
	assert.Equal(t, 2, avail[0].Remaining)

	for _, a := range h.Appointments() {
		r, err := restored.Appointment(a.ID)
		require.NoError(t, err)
		assert.Equal(t, a.Status, r.Status)
		assert.True(t, a.Cost.Equal(r.Cost))
	}

	// the restored registry still takes writes
	_, err = restored.AddSlot(context.Background(), doc.ID, "2024-01-01", mustWindow(t, "09:30-10:30"), 1)
	require.Error(t, err)
}

func TestImportRejectsBadKeys(t *testing.T) {
	snap := Empty()
	snap.Patients["not-a-uuid"] = PatientRecord{Name: "X"}

	_, err := Import(snap, hospital.Info{}, hospital.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-uuid")
}

func TestRoundTripAfterRemovalAndReopenAttempt(t *testing.T) {
	ctx := context.Background()
	h := hospital.New(hospital.Info{Name: "City Hospital"}, hospital.Options{})
	p, err := h.AddPatient(ctx, hospital.PatientInput{Name: "Jane Roe", Age: 34, Gender: "F", Phone: "555-0101"})
	require.NoError(t, err)
	d, err := h.AddDoctor(ctx, hospital.DoctorInput{Name: "Ada Smith", Specialization: "Cardiology", Phone: "555-0200"})
	require.NoError(t, err)
	a, err := h.CreateAppointment(ctx, appointment.Details{
		PatientID: p.ID, DoctorID: d.ID, Date: "2024-01-01", Window: mustWindow(t, "09:00-09:30"),
	})
	require.NoError(t, err)
	_, err = h.CancelAppointment(ctx, a.ID, "")
	require.NoError(t, err)
	require.NoError(t, h.RemovePatient(ctx, p.ID))

	_, err = h.UpdateAppointmentStatus(ctx, a.ID, appointment.StatusScheduled, "reopen")
	require.ErrorIs(t, err, outcome.ErrNotFound)

	first := Export(h)
	restored, err := Import(first, h.Info(), hospital.Options{})
	require.NoError(t, err)
	assert.Equal(t, first, Export(restored))

	got, err := restored.Appointment(a.ID)
	require.NoError(t, err)
	assert.Equal(t, appointment.StatusCancelled, got.Status)
}

func TestImportValidatesRecords(t *testing.T) {
	patientID := uuid.New()
	doctorID := uuid.New()

	slot := func(start, end string, capacity int, occupants ...uuid.UUID) SlotRecord {
		return SlotRecord{ID: uuid.New(), StartTime: start, EndTime: end, Capacity: capacity, Occupants: occupants}
	}
	appt := func(status appointment.Status, patient, doctor uuid.UUID) AppointmentRecord {
		return AppointmentRecord{
			PatientID: patient,
			DoctorID:  doctor,
			Date:      "2024-01-01",
			TimeSlot:  "09:00-09:30",
			Status:    string(status),
		}
	}

	tests := []struct {
		name    string
		edit    func(s *Snapshot)
		wantErr error
	}{
		{
			name: "well formed",
			edit: func(s *Snapshot) {
				s.Appointments[uuid.NewString()] = appt(appointment.StatusScheduled, patientID, doctorID)
			},
		},
		{
			name: "closed appointment may outlive its patient",
			edit: func(s *Snapshot) {
				s.Appointments[uuid.NewString()] = appt(appointment.StatusCompleted, uuid.New(), doctorID)
			},
		},
		{
			name: "patient listed twice in one slot",
			edit: func(s *Snapshot) {
				d := s.Doctors[doctorID.String()]
				d.Schedule["2024-01-02"] = []SlotRecord{slot("09:00", "10:00", 2, patientID, patientID)}
				s.Doctors[doctorID.String()] = d
			},
			wantErr: outcome.ErrDuplicate,
		},
		{
			name: "occupants over capacity",
			edit: func(s *Snapshot) {
				d := s.Doctors[doctorID.String()]
				d.Schedule["2024-01-02"] = []SlotRecord{slot("09:00", "10:00", 1, patientID, uuid.New())}
				s.Doctors[doctorID.String()] = d
			},
			wantErr: outcome.ErrInvalidInput,
		},
		{
			name: "overlapping slots",
			edit: func(s *Snapshot) {
				d := s.Doctors[doctorID.String()]
				d.Schedule["2024-01-02"] = []SlotRecord{slot("09:00", "10:00", 1), slot("09:30", "10:30", 1)}
				s.Doctors[doctorID.String()] = d
			},
			wantErr: outcome.ErrConflict,
		},
		{
			name: "open appointment with unknown patient",
			edit: func(s *Snapshot) {
				s.Appointments[uuid.NewString()] = appt(appointment.StatusConfirmed, uuid.New(), doctorID)
			},
			wantErr: outcome.ErrNotFound,
		},
		{
			name: "open appointment with unknown doctor",
			edit: func(s *Snapshot) {
				s.Appointments[uuid.NewString()] = appt(appointment.StatusScheduled, patientID, uuid.New())
			},
			wantErr: outcome.ErrNotFound,
		},
		{
			name: "unknown status",
			edit: func(s *Snapshot) {
				s.Appointments[uuid.NewString()] = appt("postponed", patientID, doctorID)
			},
			wantErr: outcome.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Empty()
			snap.Patients[patientID.String()] = PatientRecord{Name: "Jane Roe", Active: true}
			snap.Doctors[doctorID.String()] = DoctorRecord{
				Name:     "Ada Smith",
				Active:   true,
				Schedule: map[string][]SlotRecord{"2024-01-01": {slot("09:00", "10:00", 2, patientID)}},
			}
			tt.edit(&snap)

			h, err := Import(snap, hospital.Info{}, hospital.Options{})
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Len(t, h.Appointments(), len(snap.Appointments))
				return
			}
			require.Error(t, err)
			assert.True(t, outcome.IsInvalid(err) || outcome.IsRejected(err))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	store := NewFileStore(dir)

	snap := Export(populated(t))
	require.NoError(t, store.Save(ctx, snap))

	for _, name := range []string{"patients.json", "doctors.json", "appointments.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
}

func TestFileStoreLoadMissingDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent"))

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Empty(), snap)
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doctors.json"), []byte("{"), 0o644))

	_, err := NewFileStore(dir).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode doctors")
}
