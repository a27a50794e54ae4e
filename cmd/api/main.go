package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/campuskit/academic-api/internal/handler"
	"github.com/campuskit/academic-api/internal/middleware"
	"github.com/campuskit/academic-api/internal/repository"
	"github.com/campuskit/academic-api/internal/service"
	"github.com/campuskit/academic-api/pkg/cache"
	"github.com/campuskit/academic-api/pkg/config"
	"github.com/campuskit/academic-api/pkg/database"
	"github.com/campuskit/academic-api/pkg/logger"
	corsmiddleware "github.com/campuskit/academic-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuskit/academic-api/pkg/middleware/requestid"
)

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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, read cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	students := repository.NewStudentRepository(db)
	teachers := repository.NewTeacherRepository(db)
	subjects := repository.NewSubjectRepository(db)
	courses := repository.NewCourseRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	timetables := repository.NewTimetableRepository(db)
	attendance := repository.NewAttendanceRepository(db)

	validate := validator.New()
	if err := service.RegisterAttendanceValidations(validate); err != nil {
		logr.Sugar().Fatalw("failed to register validations", "error", err)
	}

	tokenSvc := service.NewTokenService(cfg.JWT.Secret)
	assignmentSvc := service.NewAssignmentService(students, teachers, assignments, cacheSvc, metrics, logr)
	timetableSvc := service.NewTimetableService(students, assignments, timetables, cacheSvc, metrics, validate, logr)
	attendanceSvc := service.NewAttendanceService(teachers, subjects, assignments, attendance, cacheSvc, metrics, validate, logr)
	facadeSvc := service.NewFacadeService(students, courses, assignments, timetableSvc, attendanceSvc, attendance, cacheSvc, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(reqidmiddleware.Middleware())
	engine.Use(logger.GinMiddleware(logr))
	engine.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	engine.Use(middleware.Metrics(metrics))

	router := handler.NewRouter(
		tokenSvc,
		metrics,
		handler.NewAssignmentHandler(assignmentSvc, facadeSvc),
		handler.NewTimetableHandler(timetableSvc, facadeSvc),
		handler.NewAttendanceHandler(attendanceSvc, facadeSvc),
	)
	router.Register(engine, cfg.APIPrefix)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := engine.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
