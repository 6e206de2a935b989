package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/edutrack/tuition-backend-go/internal/config"
	appHTTP "github.com/edutrack/tuition-backend-go/internal/handler/http"
	"github.com/edutrack/tuition-backend-go/internal/pkg/clock"
	"github.com/edutrack/tuition-backend-go/internal/pkg/cron"
	"github.com/edutrack/tuition-backend-go/internal/pkg/database"
	"github.com/edutrack/tuition-backend-go/internal/pkg/jwt"
	"github.com/edutrack/tuition-backend-go/internal/repository/postgresql"
	accessService "github.com/edutrack/tuition-backend-go/internal/service/access"
	billingService "github.com/edutrack/tuition-backend-go/internal/service/billing"
	tierService "github.com/edutrack/tuition-backend-go/internal/service/tier"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	tierRepo := postgresql.NewTierRepository(db)
	paymentRepo := postgresql.NewPaymentRepository(db)
	accountDir := postgresql.NewAccountDirectory(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	clk := clock.New()

	accessSvc := accessService.NewAccessService(paymentRepo, accountDir, clk)
	billingSvc := billingService.NewBillingService(db, paymentRepo, accountDir, accessSvc, clk, cfg.Billing.GracePeriodDays)
	tierSvc := tierService.NewTierService(db, tierRepo, paymentRepo)

	tierHandler := appHTTP.NewTierHandler(tierSvc)
	billingHandler := appHTTP.NewBillingHandler(billingSvc, accessSvc, clk)
	accessHandler := appHTTP.NewAccessHandler(accessSvc, billingSvc, clk)

	router := appHTTP.NewRouter(
		JWTService,
		tierHandler,
		billingHandler,
		accessHandler,
		cfg.App.Env,
	)

	scheduler := cron.NewScheduler()
	billingJobs := cron.NewBillingJobs(billingSvc, accessSvc, clk)
	billingJobs.RegisterJobs(scheduler, cfg.Cron.SweepInterval, cfg.Cron.BatchInterval)
	scheduler.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	<-stop
	scheduler.Stop()
	if err := server.Close(); err != nil {
		fmt.Println("Server shutdown error:", err)
	}
}
