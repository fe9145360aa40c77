package bootstrap

import (
	"log"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mrdaaan1/cofounder-ai/config"
	httpapi "github.com/mrdaaan1/cofounder-ai/internal/api/http"
	reqid "github.com/mrdaaan1/cofounder-ai/internal/api/http/middleware"
	"github.com/mrdaaan1/cofounder-ai/internal/app"
	apphttp "github.com/mrdaaan1/cofounder-ai/internal/app/http"
	"github.com/mrdaaan1/cofounder-ai/internal/auth"
	"github.com/mrdaaan1/cofounder-ai/internal/auth/middleware"
	mentorservice "github.com/mrdaaan1/cofounder-ai/internal/mentor/service"
	"github.com/mrdaaan1/cofounder-ai/internal/projects/repository"
)

type RouterDeps struct {
	ServiceName string
	Cfg         *config.Config
	DB          *pgxpool.Pool
	Redis       *redis.Client // nil disables the transcript mirror
	Mentor      *mentorservice.Mentor
	AuthClient  *firebaseauth.Client // nil falls back to OptionalUser
	Sessions    *app.Manager
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(reqid.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.Cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-User-Id"},
		AllowCredentials: true,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Cfg.App.Version, dep.Mentor.ProviderName(), dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	if dep.AuthClient != nil {
		api.Use(middleware.FirebaseAuthMiddleware(dep.AuthClient))
	} else {
		log.Println("firebase auth disabled, using X-User-Id fallback")
		api.Use(auth.OptionalUser())
	}

	projectRepo := repository.NewProjectRepo(dep.DB)
	var transcripts apphttp.TranscriptStore
	if dep.Redis != nil {
		transcripts = repository.NewTranscriptRepo(dep.Redis)
	}

	apphttp.New(dep.Sessions, projectRepo, transcripts).Register(api)

	return r
}

// NewSessionManager wires the controller's dependencies from concrete repos.
func NewSessionManager(cfg *config.Config, db *pgxpool.Pool, rdb *redis.Client, mentor *mentorservice.Mentor) *app.Manager {
	deps := app.Deps{
		Mentor:       mentor,
		Projects:     repository.NewProjectRepo(db),
		Artifacts:    repository.NewArtifactRepo(db),
		AutosaveWait: cfg.Mentor.AutosaveWait,
	}
	if rdb != nil {
		deps.Transcripts = repository.NewTranscriptRepo(rdb)
	}
	return app.NewManager(deps)
}
