package main

import (
	"context"
	"flag"
	"time"

	"github.com/hackgods/clinic-scheduling/internal/app"
	"github.com/hackgods/clinic-scheduling/internal/config"
)

func main() {
	doctors := flag.Int("doctors", 20, "number of doctors")
	patients := flag.Int("patients", 500, "number of patients")
	days := flag.Int("days", 5, "days of morning slots per doctor, starting today")
	perDoctor := flag.Int("appointments", 8, "appointments to book per doctor")
	seed := flag.Uint64("seed", 0, "random seed, 0 picks one from the clock")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}
	log := config.NewLogger(cfg)
	log.Info("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rt, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("backend setup failed")
	}
	defer rt.Close()

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	h := rt.NewHospital()
	sum, err := app.Populate(ctx, h, app.SeedOptions{
		Seed:                  *seed,
		Doctors:               *doctors,
		Patients:              *patients,
		Days:                  *days,
		StartDate:             time.Now().UTC(),
		AppointmentsPerDoctor: *perDoctor,
	})
	if err != nil {
		log.WithError(err).Fatal("populate failed")
	}

	if err := rt.SaveHospital(ctx, h); err != nil {
		log.WithError(err).Fatal("save failed")
	}

	log.WithField("doctors", sum.Doctors).
		WithField("patients", sum.Patients).
		WithField("slots", sum.Slots).
		WithField("appointments", sum.Appointments).
		WithField("seed", *seed).
		Info("seed complete")
}
