package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/alumlink/reunion-api/docs"
	v1 "github.com/alumlink/reunion-api/internal/api/handler/v1"
	"github.com/alumlink/reunion-api/internal/api/middleware"
	"github.com/alumlink/reunion-api/internal/config"
	"github.com/alumlink/reunion-api/internal/repository"
	"github.com/alumlink/reunion-api/internal/repository/dao"
	"github.com/alumlink/reunion-api/internal/service"
	"github.com/alumlink/reunion-api/internal/storage"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	wizardHandler := s.initWizardHandler(db)
	registrationHandler := s.initRegistrationHandler(db)
	s.MountHandlers(authHandler, wizardHandler, registrationHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	identityDAO := dao.NewIdentityDAO(db)
	repo := repository.NewIdentityRepository(identityDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initWizardHandler(db *gorm.DB) *v1.WizardHandler {
	alumniRepo := repository.NewAlumniRepository(dao.NewAlumniDAO(db))
	regRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	identityRepo := repository.NewIdentityRepository(dao.NewIdentityDAO(db))

	lookup := service.NewLookupService(alumniRepo, regRepo)
	authSvc := service.NewAuthService(identityRepo)
	store := storage.NewClient(s.Config.Storage.Endpoint, s.Config.Storage.APIKey)
	pipeline := service.NewSubmissionPipeline(regRepo, authSvc, store)

	svc := service.NewWizardService(lookup, pipeline, s.Config.Event)
	handler := v1.NewWizardHandler(svc)

	return handler
}

func (s *Server) initRegistrationHandler(db *gorm.DB) *v1.RegistrationHandler {
	regRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	identityRepo := repository.NewIdentityRepository(dao.NewIdentityDAO(db))

	svc := service.NewRegistrationService(regRepo)
	identitySvc := service.NewAuthService(identityRepo)
	handler := v1.NewRegistrationHandler(svc, identitySvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(authHandler *v1.AuthHandler, wizardHandler *v1.WizardHandler, registrationHandler *v1.RegistrationHandler) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	limiter := middleware.NewRateLimit(s.Config.Event.RateLimitRPS, s.Config.Event.RateLimitBurst)
	wizard := s.Router.Group(basePath, limiter.Handler())
	{
		wizard.POST("/registrations/wizard", wizardHandler.HandleStartWizard)
		wizard.GET("/registrations/wizard/:sessionID", wizardHandler.HandleGetWizard)
		wizard.PUT("/registrations/wizard/:sessionID/personal", wizardHandler.HandleUpdatePersonal)
		wizard.PUT("/registrations/wizard/:sessionID/contact", wizardHandler.HandleUpdateContact)
		wizard.PUT("/registrations/wizard/:sessionID/academic", wizardHandler.HandleUpdateAcademic)
		wizard.PUT("/registrations/wizard/:sessionID/family", wizardHandler.HandleUpdateFamily)
		wizard.POST("/registrations/wizard/:sessionID/photo", wizardHandler.HandleStagePhoto)
		wizard.POST("/registrations/wizard/:sessionID/perks", wizardHandler.HandleTogglePerk)
		wizard.PUT("/registrations/wizard/:sessionID/donation", wizardHandler.HandleSetDonation)
		wizard.POST("/registrations/wizard/:sessionID/payment", wizardHandler.HandlePaymentAction)
		wizard.GET("/registrations/wizard/:sessionID/payment-intent", wizardHandler.HandlePaymentIntent)
		wizard.GET("/registrations/wizard/:sessionID/payment-intent/qr", wizardHandler.HandlePaymentIntentQR)
		wizard.POST("/registrations/wizard/:sessionID/advance", wizardHandler.HandleAdvance)
		wizard.POST("/registrations/wizard/:sessionID/retreat", wizardHandler.HandleRetreat)
		wizard.POST("/registrations/wizard/:sessionID/submit", wizardHandler.HandleSubmit)
	}

	registrations := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		registrations.GET("/registrations/me", registrationHandler.HandleGetMyRegistration)
		registrations.PATCH("/registrations/:registrationID/payment/approve", registrationHandler.HandleApprovePayment)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Alumni Reunion Registration API"
	docs.SwaggerInfo.Description = "Membership and reunion-registration portal for the alumni association."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
