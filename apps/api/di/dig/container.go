package dig_container

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/campusbuddy/helpdesk/apps/api/echo"
	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/assistant"
	"github.com/campusbuddy/helpdesk/core/collegedata"
	"github.com/campusbuddy/helpdesk/core/document"
	"github.com/campusbuddy/helpdesk/core/profile"
	"github.com/campusbuddy/helpdesk/core/syncspot"
	emailsvc "github.com/campusbuddy/helpdesk/services/email"
	"github.com/campusbuddy/helpdesk/services/llm/gemini"
	"github.com/campusbuddy/helpdesk/services/llm/mistral"
	logsvc "github.com/campusbuddy/helpdesk/services/logger"
	metricsvc "github.com/campusbuddy/helpdesk/services/metrics"
	storagesvc "github.com/campusbuddy/helpdesk/services/storage"
	"github.com/campusbuddy/helpdesk/storage/database"
	sqlxrepos "github.com/campusbuddy/helpdesk/storage/database/sqlx"
)

const dbSetUpTimeout = time.Minute

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Providers are the LLM backends, in fallback order for the chat.
type Providers struct {
	MistralChat   core.LLMService
	MistralVision core.LLMService
	Gemini        core.LLMService
}

func newRollbarLogger(conf *core.Config, name string) *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(conf).Named(name)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newLogger(conf *core.Config) core.Logger {
	return newRollbarLogger(conf, "api")
}

func newDBLogger(conf *core.Config) core.Logger {
	return newRollbarLogger(conf, "db")
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB) {
	setUp := func() (*sqlx.DB, error) {
		ctx, cancel := context.WithTimeout(context.Background(), dbSetUpTimeout)
		defer cancel()

		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Ping(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}

		if err = database.Migrate(db, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	profile.InitValidators(validate, translator)
	collegedata.InitValidators(validate, translator)
	return validate, translator
}

// newFileStorage uses Supabase storage when configured, otherwise an in-memory bucket (DEV only).
func newFileStorage(conf *core.Config, logger core.Logger) core.FileStorage {
	if conf.Storage.URL != "" {
		return storagesvc.NewSupabaseStorage(conf)
	}
	logger.Warn("storage.url is not set: uploaded documents are kept in memory")
	return storagesvc.NewMemoryStorage("http://localhost" + conf.Server.Host + "/files")
}

func newMetrics(m *metricsvc.Metrics) core.Metrics {
	return m
}

func newProviders(conf *core.Config, logger core.Logger) (*Providers, error) {
	httpClient := &http.Client{Timeout: conf.AI.RequestTimeout}

	gem, err := gemini.NewService(context.Background(), "gemini", gemini.Options{
		APIKey:     conf.AI.GeminiAPIKey,
		BaseURL:    conf.AI.GeminiBaseURL,
		Model:      conf.AI.GeminiModel,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}
	if conf.AI.MistralAPIKey == "" && conf.AI.GeminiAPIKey == "" {
		logger.Warn("no AI provider is configured: the chat will always fall back")
	}

	return &Providers{
		MistralChat: mistral.NewService("mistral", mistral.Options{
			APIKey:     conf.AI.MistralAPIKey,
			BaseURL:    conf.AI.MistralBaseURL,
			Model:      conf.AI.MistralChatModel,
			HTTPClient: httpClient,
		}),
		MistralVision: mistral.NewService("pixtral", mistral.Options{
			APIKey:     conf.AI.MistralAPIKey,
			BaseURL:    conf.AI.MistralBaseURL,
			Model:      conf.AI.MistralVisionModel,
			HTTPClient: httpClient,
		}),
		Gemini: gem,
	}, nil
}

func newAssistantService(
	conf *core.Config,
	dataSvc collegedata.Service,
	syncSvc syncspot.Service,
	providers *Providers,
	metrics core.Metrics,
	logger core.Logger,
) assistant.Service {
	return assistant.NewService(dataSvc, syncSvc, assistant.Options{
		Providers: []core.LLMService{providers.MistralChat, providers.Gemini},
		Timeout:   conf.AI.RequestTimeout,
	}, metrics, logger)
}

func newDocumentService(
	conf *core.Config,
	storage core.FileStorage,
	dataSvc collegedata.Service,
	providers *Providers,
	metrics core.Metrics,
	logger core.Logger,
) document.Service {
	return document.NewService(storage, dataSvc, document.Options{
		Structurer: providers.MistralChat,
		Vision:     providers.MistralVision,
		Timeout:    conf.AI.RequestTimeout,
	}, metrics, logger)
}

type serverParams struct {
	dig.In

	Conf         *core.Config
	Logger       core.Logger
	Validate     *validator.Validate
	Translator   ut.Translator
	ProfileSvc   profile.Service
	DataSvc      collegedata.Service
	DocumentSvc  document.Service
	SyncSpotSvc  syncspot.Service
	AssistantSvc assistant.Service
	Metrics      *metricsvc.Metrics
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(p.Conf, &echoapi.Deps{
		Logger:          p.Logger,
		Validate:        p.Validate,
		Translator:      p.Translator,
		ProfileSvc:      p.ProfileSvc,
		DataSvc:         p.DataSvc,
		DocumentSvc:     p.DocumentSvc,
		SyncSpotSvc:     p.SyncSpotSvc,
		AssistantSvc:    p.AssistantSvc,
		Metrics:         p.Metrics.Handler(),
		RequestObserver: p.Metrics,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(newValidator))
	must(c.Provide(newFileStorage))
	must(c.Provide(metricsvc.NewMetrics))
	must(c.Provide(newMetrics))
	must(c.Provide(newProviders))

	// repositories
	must(c.Provide(func(db *sqlx.DB) profile.Repository { return sqlxrepos.NewProfileRepository(db) }))
	must(c.Provide(func(db *sqlx.DB) collegedata.Repository { return sqlxrepos.NewCollegeDataRepository(db) }))
	must(c.Provide(func(db *sqlx.DB) syncspot.Repository { return sqlxrepos.NewSyncSpotRepository(db) }))

	// services
	must(c.Provide(profile.NewService))
	must(c.Provide(collegedata.NewService))
	must(c.Provide(syncspot.NewService))
	must(c.Provide(newAssistantService))
	must(c.Provide(newDocumentService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
