package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/turnero/clinic-api/internal/config"
	appointmenthandler "github.com/turnero/clinic-api/internal/handler/appointment"
	consultationhandler "github.com/turnero/clinic-api/internal/handler/consultation"
	doctorhandler "github.com/turnero/clinic-api/internal/handler/doctor"
	healthhandler "github.com/turnero/clinic-api/internal/handler/health"
	patienthandler "github.com/turnero/clinic-api/internal/handler/patient"
	reminderhandler "github.com/turnero/clinic-api/internal/handler/reminder"
	reporthandler "github.com/turnero/clinic-api/internal/handler/report"
	"github.com/turnero/clinic-api/internal/middleware"
	"github.com/turnero/clinic-api/internal/repository/postgres"
	"github.com/turnero/clinic-api/internal/router"
	"github.com/turnero/clinic-api/internal/service/consultation"
	"github.com/turnero/clinic-api/internal/service/doctor"
	"github.com/turnero/clinic-api/internal/service/patient"
	"github.com/turnero/clinic-api/internal/service/reminder"
	"github.com/turnero/clinic-api/internal/service/report"
	"github.com/turnero/clinic-api/internal/service/scheduling"
	"github.com/turnero/clinic-api/pkg/logger"
	"github.com/turnero/clinic-api/pkg/metrics"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("clinic_api")

	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	schedulingSvc := scheduling.NewService(appointmentRepo, doctorRepo, patientRepo, reminderRepo)
	consultationSvc := consultation.NewService(consultationRepo, appointmentRepo)
	reminderSvc := reminder.NewService(reminderRepo, appointmentRepo)
	doctorSvc := doctor.NewService(doctorRepo)
	patientSvc := patient.NewService(patientRepo)
	reportSvc := report.NewService(reportRepo)

	r := router.NewRouter(m,
		router.RouterConfig{
			RateLimit:  rate.Limit(cfg.RateLimit.RPS),
			RateBurst:  cfg.RateLimit.Burst,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
		healthhandler.NewHandler(db),
		appointmenthandler.NewHandler(schedulingSvc),
		consultationhandler.NewHandler(consultationSvc),
		reminderhandler.NewHandler(reminderSvc),
		doctorhandler.NewHandler(doctorSvc),
		patienthandler.NewHandler(patientSvc),
		reporthandler.NewHandler(reportSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
