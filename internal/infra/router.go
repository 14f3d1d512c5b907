package infra

import (
	"errors"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/blackrent/backoffice/docs"
	"github.com/blackrent/backoffice/internal/auth"
	"github.com/blackrent/backoffice/internal/cache"
	"github.com/blackrent/backoffice/internal/config"
	errs "github.com/blackrent/backoffice/internal/errors"
	"github.com/blackrent/backoffice/internal/handlers"
	"github.com/blackrent/backoffice/internal/middleware"
	"github.com/blackrent/backoffice/internal/repository"
	"github.com/blackrent/backoffice/internal/service"
	"github.com/blackrent/backoffice/internal/validation"
	"github.com/blackrent/backoffice/pkg/db/transactor"
)

// Router wires all dependencies and builds echo application
func Router(pgPool *pgxpool.Pool, redisClient *redis.Client, cfg config.Config) (*echo.Echo, error) {
	e := echo.New()

	enLocale := en.New()
	unvTranslator := ut.New(enLocale, enLocale)
	trans, ok := unvTranslator.GetTranslator("en")
	if !ok {
		return nil, errors.New("failed to build echo validator because of missing en translations")
	}
	e.Validator = validation.Echo(validator.New(), trans)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		logrus.Error(err)

		var (
			pldErr       *validation.PayloadError
			businessErr  *errs.BusinessErr
			notFoundErr  *errs.EntryNotFoundErr
			integrityErr *errs.IntegrityErr
		)

		switch {
		case errors.As(err, &pldErr):
			err = echo.NewHTTPError(http.StatusBadRequest, pldErr)
		case errors.As(err, &businessErr):
			err = echo.NewHTTPError(http.StatusBadRequest, businessErr)
		case errors.As(err, &notFoundErr):
			err = echo.NewHTTPError(http.StatusNotFound, notFoundErr.Error())
		case errors.As(err, &integrityErr):
			err = echo.NewHTTPError(http.StatusConflict, integrityErr.Error())
		}

		e.DefaultHTTPErrorHandler(err, c)
	}

	// Transactor
	trx := transactor.NewPgxTransactor(pgPool)

	// Configs
	jwtCfg := cfg.AuthCfg.JwtCfg
	rfrTokenCfg := cfg.AuthCfg.RefreshTokenCfg

	// Token issuing
	jwtIssuer := auth.NewJwtIssuer(jwtCfg.Issuer, jwtCfg.SigningMethod, jwtCfg.TimeToLive, jwtCfg.PrivateKey)
	jwtValidator := auth.NewJwtValidator(jwtCfg.SigningMethod, jwtCfg.PublicKey)
	rfrTokenIssuer := auth.NewRefreshTokenIssuer(rfrTokenCfg.MaxCount, rfrTokenCfg.TimeToLive)

	// Middleware
	authorizeMw := middleware.Authorize(jwtValidator)

	// Repositories
	userRps := repository.NewPostgresUserRepository(trx)
	rfrTokenRps := repository.NewPostgresRefreshTokenRepository(trx)
	customerRps := repository.NewPostgresCustomerRepository(trx)
	rentalRps := repository.NewPostgresRentalRepository(trx)
	customerCache := cache.NewRedisCustomerCacheRepository(redisClient)

	// Services
	authSvc := service.NewAuthService(jwtIssuer, rfrTokenIssuer, userRps, rfrTokenRps)
	customerSvc := service.NewCustomerService(customerRps, customerCache)
	mergeSvc := service.NewCustomerMergeService(trx, customerRps, rentalRps, customerCache, cfg.DedupCfg.NameThreshold)

	// Handlers
	authHandler := handlers.NewAuthHTTPHandler(authSvc)
	customerHandler := handlers.NewCustomerHTTPHandler(customerSvc)
	mergeHandler := handlers.NewCustomerMergeHTTPHandler(mergeSvc)

	// API routes
	api := e.Group("/api")

	// auth
	authAPI := api.Group("/auth")
	authAPI.POST("/signup", authHandler.Signup)
	authAPI.POST("/login", authHandler.Login)
	authAPI.POST("/logout", authHandler.Logout)
	authAPI.POST("/refresh", authHandler.Refresh)

	// customers
	customersAPI := api.Group("/customers", authorizeMw)
	customersAPI.GET("", customerHandler.GetAll)
	customersAPI.GET("/:id", customerHandler.Get)
	customersAPI.POST("", customerHandler.Post)
	customersAPI.PUT("/:id", customerHandler.Put)
	customersAPI.DELETE("/:id", customerHandler.DeleteByID)

	// customer deduplication and merge
	mergeAPI := api.Group("/customer-merge", authorizeMw)
	mergeAPI.GET("/duplicates", mergeHandler.GetDuplicates)
	mergeAPI.POST("/merge", mergeHandler.Merge)
	mergeAPI.GET("/stats/:id", mergeHandler.GetStats)

	// swagger
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}
