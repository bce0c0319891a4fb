package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daskott/vitals/server/auth"
	"github.com/Daskott/vitals/server/auth/key"
	"github.com/Daskott/vitals/server/cron"
	"github.com/Daskott/vitals/server/gstorage"
	"github.com/Daskott/vitals/server/logger"
	"github.com/Daskott/vitals/server/models"
	"github.com/Daskott/vitals/shared"
	"github.com/Daskott/vitals/utils"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	users          *models.UserStore
	medications    *models.MedicationStore
	contacts       *models.ContactStore
	hasher         *auth.Hasher
	sessions       *auth.SessionManager
	keyPair        *key.KeyPair
	validate       *validator.Validate
	allowedOrigins []string
	logg           *zap.SugaredLogger
}

type Options struct {
	DB             *gorm.DB
	KeyPair        *key.KeyPair
	BcryptCost     int
	AllowedOrigins []string
	Logger         *zap.SugaredLogger
}

func NewServer(opts Options) (*Server, error) {
	validate := validator.New()
	if err := RegisterValidators(validate); err != nil {
		return nil, err
	}

	logg := opts.Logger
	if logg == nil {
		logg = zap.NewNop().Sugar()
	}

	hasher := auth.NewHasher(opts.BcryptCost)

	return &Server{
		users:          models.NewUserStore(opts.DB, hasher),
		medications:    models.NewMedicationStore(opts.DB),
		contacts:       models.NewContactStore(opts.DB),
		hasher:         hasher,
		sessions:       auth.NewSessionManager(opts.KeyPair),
		keyPair:        opts.KeyPair,
		validate:       validate,
		allowedOrigins: opts.AllowedOrigins,
		logg:           logg,
	}, nil
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.health).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/.well-known/jwks.json", s.jwks).Methods(http.MethodGet, http.MethodOptions)

	router.HandleFunc("/create_user", s.createUser).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/login", s.logIn).Methods(http.MethodPost, http.MethodOptions)

	router.Handle("/get_user_details", s.protected(s.getUserDetails)).Methods(http.MethodGet, http.MethodOptions)
	router.Handle("/update_user_details", s.protected(s.updateUserDetails)).Methods(http.MethodPut, http.MethodOptions)
	router.Handle("/protected", s.protected(s.welcome)).Methods(http.MethodGet, http.MethodOptions)

	router.Handle("/add_medication", s.protected(s.addMedication)).Methods(http.MethodPost, http.MethodOptions)
	router.Handle("/get_medications", s.protected(s.getMedications)).Methods(http.MethodGet, http.MethodOptions)
	router.Handle("/update_medication/{id}", s.protected(s.updateMedication)).Methods(http.MethodPut, http.MethodOptions)
	router.Handle("/delete_medication/{id}", s.protected(s.deleteMedication)).Methods(http.MethodDelete, http.MethodOptions)

	router.Handle("/add_emergency_contact", s.protected(s.addEmergencyContact)).Methods(http.MethodPost, http.MethodOptions)
	router.Handle("/get_emergency_contacts", s.protected(s.getEmergencyContacts)).Methods(http.MethodGet, http.MethodOptions)
	router.Handle("/update_emergency_contact/{id}", s.protected(s.updateEmergencyContact)).Methods(http.MethodPut, http.MethodOptions)
	router.Handle("/delete_emergency_contact/{id}", s.protected(s.deleteEmergencyContact)).Methods(http.MethodDelete, http.MethodOptions)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeResponse(w, ResponsePayload{Message: "Not found"}, http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeResponse(w, ResponsePayload{Message: "Method not allowed"}, http.StatusMethodNotAllowed)
	})

	router.Use(s.loggingMiddleware)
	router.Use(mux.CORSMethodMiddleware(router))
	router.Use(s.corsMiddleware)
	router.Use(s.initialContextMiddleware)

	return router
}

func (s *Server) protected(handler http.HandlerFunc) http.Handler {
	return s.protectedRouteMiddleware(handler)
}

// Start runs the vitals server until it receives SIGINT or SIGTERM
func Start(config *shared.ServerConfig, devMode bool) {
	logg := logger.NewLogger(devMode)
	defer logg.Sync()

	keyPair, err := key.NewKeyPairFromRSAPrivateKeyPem([]byte(config.Vitals.PrivateKeyPem))
	fatalOnError(logg, err)

	dataDir := config.Vitals.DataDir
	if dataDir == "" {
		dataDir = configDirectory(logg, devMode)
	}

	dbFilePath, err := models.DbFilePath(dataDir)
	fatalOnError(logg, err)

	var backup *dbBackup
	storageConfig := config.Google.Storage
	if storageConfig.EnableSqliteBackupAndSync {
		gStorage, err := gstorage.NewGStorage(context.Background(), config.Google.ApplicationCredentials)
		fatalOnError(logg, err)
		defer gStorage.Close()

		backup = &dbBackup{
			storage:    gStorage,
			bucket:     storageConfig.Bucket,
			prefix:     storageConfig.Prefix,
			dbFilePath: dbFilePath,
			logg:       logg,
		}

		if !utils.FileExist(dbFilePath) {
			fatalOnError(logg, backup.Restore(context.Background()))
		}
	}

	db, err := models.OpenDB(config.Sqlite.PassPhrase, dataDir)
	fatalOnError(logg, err)
	fatalOnError(logg, models.AutoMigrate(db))

	srv, err := NewServer(Options{
		DB:             db,
		KeyPair:        keyPair,
		BcryptCost:     config.Vitals.BcryptCost,
		AllowedOrigins: config.Vitals.Cors.AllowedOrigins,
		Logger:         logg,
	})
	fatalOnError(logg, err)

	scheduler := cron.NewCronScheduler(config.Vitals.Cron.TimeZone)
	if backup != nil {
		backup.db = db
		_, err = scheduler.Cron(storageConfig.SqliteBackupSchedule).Tag("backupSqliteDb").Do(backup.run)
		fatalOnError(logg, err)
	}
	scheduler.StartAsync()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%v", config.Vitals.Listener.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go serve(logg, httpServer)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cleanup(logg, scheduler, backup, httpServer)

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}
}
