package router

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "farm-vet-appointments/internal/docs"

	"farm-vet-appointments/internal/adapters/eventbus/logbus"
	memlock "farm-vet-appointments/internal/adapters/locking/memory"
	redislock "farm-vet-appointments/internal/adapters/locking/redis"
	mem "farm-vet-appointments/internal/adapters/storage/memory"
	pg "farm-vet-appointments/internal/adapters/storage/postgres"
	"farm-vet-appointments/internal/domain/animals"
	"farm-vet-appointments/internal/domain/appointments"
	"farm-vet-appointments/internal/domain/vets"
	"farm-vet-appointments/internal/middleware"
	"farm-vet-appointments/internal/ports/auth"
	"farm-vet-appointments/internal/ports/eventbus"
	"farm-vet-appointments/internal/ports/locking"
	"farm-vet-appointments/internal/scheduling"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: si viene, el lock de reservas es distribuido (Redis).
	Redis   *redis.Client
	LockTTL time.Duration

	// Opcional: si no viene, los eventos se escriben en el log.
	Publisher eventbus.Publisher

	Logger *slog.Logger

	// Zona horaria del calendario de visitas. Default: UTC.
	Location *time.Location
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))

	// AuthContext antes del access log para que las claims queden registradas.
	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.AccessLog(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		animalRepo animals.Repository
		vetRepo    vets.Repository
		apptRepo   appointments.Repository
	)

	if opts.DB != nil {
		animalRepo = pg.NewAnimalsRepo(opts.DB)
		vetRepo = pg.NewVetsRepo(opts.DB)
		apptRepo = pg.NewAppointmentsRepo(opts.DB)
	} else {
		animalRepo = mem.NewAnimalRepo()
		vetRepo = mem.NewVetRepo()
		apptRepo = mem.NewAppointmentRepo()
	}

	var locker locking.VetLocker = memlock.NewLocker()
	if opts.Redis != nil {
		locker = redislock.NewLocker(opts.Redis, opts.LockTTL, "")
	}

	publisher := opts.Publisher
	if publisher == nil {
		publisher = logbus.NewPublisher(log)
	}

	cal := scheduling.NewCalendar(loc, log)

	// Services por módulo
	animalsSvc := animals.NewService(animalRepo)
	vetsSvc := vets.NewService(vetRepo, cal)
	apptSvc := appointments.NewService(apptRepo, appointments.Options{
		Animals:   animalsSvc,
		Vets:      vetsSvc,
		Locker:    locker,
		Publisher: publisher,
		Calendar:  cal,
		Logger:    log,
	})
	// vets necesita las reservas activas para calcular huecos libres.
	vetsSvc.UseBookings(apptSvc)

	// Rutas por módulo
	animals.RegisterRoutes(r, animalsSvc)
	vets.RegisterRoutes(r, vetsSvc)
	appointments.RegisterRoutes(r, apptSvc)

	return r
}
