package hospital

import (
	"github.com/hackgods/clinic-scheduling/internal/appointment"
)

type DepartmentStats struct {
	Doctors       int `json:"doctors"`
	ActiveDoctors int `json:"active_doctors"`
}

type Statistics struct {
	TotalPatients      int                        `json:"total_patients"`
	ActivePatients     int                        `json:"active_patients"`
	TotalDoctors       int                        `json:"total_doctors"`
	ActiveDoctors      int                        `json:"active_doctors"`
	TotalAppointments  int                        `json:"total_appointments"`
	TodayAppointments  int                        `json:"today_appointments"`
	TotalScheduleSlots int                        `json:"total_schedule_slots"`
	ByStatus           map[appointment.Status]int `json:"appointment_statuses"`
	Departments        map[string]DepartmentStats `json:"departments"`
	Hospital           Info                       `json:"hospital_info"`
}

// Statistics summarises the registry; today is a YYYY-MM-DD date.
func (h *Hospital) Statistics(today string) Statistics {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st := Statistics{
		TotalPatients:     len(h.patients),
		TotalDoctors:      len(h.doctors),
		TotalAppointments: len(h.appointments),
		ByStatus:          make(map[appointment.Status]int),
		Departments:       make(map[string]DepartmentStats, len(h.info.Departments)),
		Hospital:          h.Info(),
	}

	for _, p := range h.patients {
		if p.Active {
			st.ActivePatients++
		}
	}

	for _, dept := range h.info.Departments {
		st.Departments[dept] = DepartmentStats{}
	}
	for _, d := range h.doctors {
		if d.Active {
			st.ActiveDoctors++
		}
		st.TotalScheduleSlots += d.Schedule.SlotCount()

		ds, ok := st.Departments[d.Department]
		if !ok {
			continue
		}
		ds.Doctors++
		if d.Active {
			ds.ActiveDoctors++
		}
		st.Departments[d.Department] = ds
	}

	for _, a := range h.appointments {
		st.ByStatus[a.Status]++
		if a.Date == today {
			st.TodayAppointments++
		}
	}

	return st
}
