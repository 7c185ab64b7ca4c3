package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/unireg/registrar-api/api/swagger"
	"github.com/unireg/registrar-api/internal/handler"
	"github.com/unireg/registrar-api/internal/middleware"
	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/repository"
	"github.com/unireg/registrar-api/internal/service"
	"github.com/unireg/registrar-api/pkg/cache"
	"github.com/unireg/registrar-api/pkg/config"
	"github.com/unireg/registrar-api/pkg/database"
	"github.com/unireg/registrar-api/pkg/logger"
	corsmiddleware "github.com/unireg/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unireg/registrar-api/pkg/middleware/requestid"
)

// @title Registrar API
// @version 1.0.0
// @description Course registration backend: prerequisite trees, enrollment, weekly schedules
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without shared cache", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()
	clock := clockwork.NewRealClock()

	courseRepo := repository.NewCourseRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.CourseTreeTTL, logr, cacheRepo != nil)
	authSvc := service.NewAuthService(cfg.JWT.Secret, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, clock, validate, logr)
	treeSvc := service.NewCourseTreeService(courseRepo, departmentRepo, cacheSvc, metricsSvc, cfg.Cache.CourseTreeTTL, clock, logr)
	enrollmentSvc := service.NewEnrollmentService(
		enrollmentRepo,
		studentRepo,
		courseRepo,
		departmentRepo,
		treeSvc,
		semesterSvc,
		scheduleRepo,
		metricsSvc,
		cfg.Cache.EnrollmentTTL,
		cfg.Registration.WithdrawalDeadline,
		clock,
		validate,
		logr,
	)
	scheduleSvc := service.NewScheduleService(
		scheduleRepo,
		timeSlotRepo,
		roomRepo,
		instructorRepo,
		enrollmentRepo,
		courseRepo,
		semesterSvc,
		metricsSvc,
		cfg.Cache.SeatCountTTL,
		cfg.Cache.TimeSlotTTL,
		clock,
		validate,
		logr,
	)

	treeHandler := handler.NewCourseTreeHandler(treeSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	semesterHandler := handler.NewSemesterHandler(semesterSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := middleware.JWT(authSvc)
	admin := middleware.RequireRoles(models.RoleAdmin)
	selfOrStaff := middleware.RBAC(middleware.Self, string(models.RoleAdmin), string(models.RoleInstructor))

	api := r.Group(cfg.APIPrefix)
	api.Use(auth)
	{
		tree := api.Group("/course-tree")
		{
			tree.GET("", treeHandler.GetTree)
			tree.GET("/:course_id", treeHandler.GetCourse)
			tree.GET("/validate/:course_id", treeHandler.Validate)
			tree.GET("/:course_id/semesters", treeHandler.GetSemesters)
			tree.POST("/:course_id/prerequisites/:prereq_id", admin, treeHandler.AddPrerequisite)
			tree.DELETE("/:course_id/prerequisites/:prereq_id", admin, treeHandler.RemovePrerequisite)
			tree.PATCH("/:course_id/level", admin, treeHandler.UpdateLevel)
			tree.PUT("/:course_id/semesters", admin, treeHandler.UpdateSemesters)
		}

		enrollments := api.Group("/enrollments")
		{
			enrollments.POST("", enrollmentHandler.Register)
			enrollments.DELETE("/:course_id", enrollmentHandler.Withdraw)
			enrollments.GET("/student/:student_id", selfOrStaff, enrollmentHandler.ListByStudent)
		}
		api.GET("/courses/available", enrollmentHandler.AvailableCourses)

		schedule := api.Group("/schedule")
		{
			schedule.GET("", scheduleHandler.GetSchedule)
			schedule.POST("/slots", scheduleHandler.SelectSlot)
			schedule.GET("/slots", admin, scheduleHandler.ListAllSlots)
			schedule.DELETE("/slots/:course_id/:type", scheduleHandler.RemoveSlot)
			schedule.GET("/conflicts", scheduleHandler.GetConflicts)
			schedule.GET("/recommendations", scheduleHandler.GetRecommendations)
			schedule.GET("/course/:course_id/slots", scheduleHandler.GetCourseSlots)
			schedule.GET("/course/:course_id/seats", scheduleHandler.GetSeats)
			schedule.GET("/export", scheduleHandler.Export)
		}

		semester := api.Group("/semester")
		{
			semester.GET("", semesterHandler.GetPolicy)
			semester.PUT("", admin, semesterHandler.UpdatePolicy)
		}

		api.GET("/metrics", admin, metricsHandler.Prometheus)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
