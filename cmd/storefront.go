package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartController "github.com/modernshop/storefront/cart/controller"
	checkoutController "github.com/modernshop/storefront/checkout/controller"
	checkoutService "github.com/modernshop/storefront/checkout/service"
	"github.com/modernshop/storefront/internal/config"
	"github.com/modernshop/storefront/internal/constants"
	"github.com/modernshop/storefront/internal/identity"
	"github.com/modernshop/storefront/internal/infra"
	"github.com/modernshop/storefront/internal/log"
	"github.com/modernshop/storefront/internal/middleware"
	"github.com/modernshop/storefront/internal/otel"
	"github.com/modernshop/storefront/internal/reconciler"
	"github.com/modernshop/storefront/internal/store"
	productController "github.com/modernshop/storefront/product/controller"
	productService "github.com/modernshop/storefront/product/service"
	wishlistController "github.com/modernshop/storefront/wishlist/controller"
)

func RunStorefrontService(c context.Context) {
	appName := constants.AppStorefrontService

	cfg := config.Get(c, appName)
	logger := log.Get(fmt.Sprintf("/var/log/%s.log", appName), cfg.Application).
		With().
		Str(log.KeyAppName, appName).
		Str(log.KeyTag, "main RunStorefrontService").
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	otelShutdowns, err := otel.InitOtelSdk(c, appName, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	pool := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger.Info().Msg("shutting down database")
		pool.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("shutting down cache")
		if err := cache.Close(); err != nil {
			err = fmt.Errorf("failed shutting down cache with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing stores").Logger()
	logger.Info().Msg("initializing stores")
	postgres := store.NewPostgres(pool)
	logger.Info().Msg("initialized stores")

	logger = logger.With().Str(log.KeyProcess, "initializing identity provider").Logger()
	logger.Info().Msg("initializing identity provider")
	provider := identity.NewTokenProvider(cfg.Application)
	logger.Info().Msg("initialized identity provider")

	logger = logger.With().Str(log.KeyProcess, "initializing reconciler").Logger()
	logger.Info().Msg("initializing reconciler")
	rec := reconciler.New(provider, postgres.CartLines(), postgres.Wishlist())
	defer rec.Close()
	logger.Info().Msg("initialized reconciler")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(appName),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	productRouter := router.PathPrefix("/products").Subrouter()
	productController.AttachProductController(
		productRouter,
		productService.NewProductService(postgres.Products(), cache),
	)

	cartRouter := router.PathPrefix("/carts").Subrouter()
	cartRouter.Use(middleware.OptionalAuth(provider))
	cartController.AttachCartController(cartRouter, rec)

	wishlistRouter := router.PathPrefix("/wishlist").Subrouter()
	wishlistRouter.Use(middleware.Auth(provider))
	wishlistController.AttachWishlistController(wishlistRouter, rec)

	checkoutRouter := router.PathPrefix("/checkout").Subrouter()
	checkoutRouter.Use(middleware.Auth(provider))
	checkoutController.AttachCheckoutController(
		checkoutRouter,
		checkoutService.NewCheckoutService(cfg.Payment),
		rec,
	)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
