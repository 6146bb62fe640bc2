package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/modernshop/storefront/checkout/internal/otel"
	"github.com/modernshop/storefront/checkout/service"
	inErrors "github.com/modernshop/storefront/internal/errors"
	"github.com/modernshop/storefront/internal/httpx"
	"github.com/modernshop/storefront/internal/log"
	inOtel "github.com/modernshop/storefront/internal/otel"
	"github.com/modernshop/storefront/internal/reconciler"
)

type CheckoutController struct {
	service    *service.CheckoutService
	reconciler *reconciler.Reconciler
}

func AttachCheckoutController(
	router *mux.Router,
	svc *service.CheckoutService,
	rec *reconciler.Reconciler,
) {
	controller := CheckoutController{service: svc, reconciler: rec}

	router.HandleFunc("", controller.Checkout).Methods(http.MethodPost)
	router.HandleFunc("/success", controller.Success).Methods(http.MethodPost)
}

func statusCodeFromError(err error) int {
	if errors.Is(err, inErrors.ErrNotSignedIn) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, inErrors.ErrEmptyCart) {
		return http.StatusBadRequest
	}
	if errors.Is(err, inErrors.ErrNoRedirectURL) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (t CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Checkout").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	c = logger.WithContext(c)
	lines, err := t.reconciler.Load(c)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	if len(lines) == 0 {
		err = inErrors.ErrEmptyCart
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg("checkout blocked on empty cart")
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Int(log.KeyLineItems, len(lines)).Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "creating session").Logger()
	logger.Info().Msg("creating session")
	c = logger.WithContext(c)
	url, err := t.service.CreateSession(c, lines)
	if err != nil {
		err = fmt.Errorf("failed creating session with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyRedirectURL, url).Msg("created session")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully created checkout session",
		"data": map[string]interface{}{
			"url": url,
		},
	})
}

func (t CheckoutController) Success(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Success")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Success").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	if err := t.reconciler.Clear(c); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("cleared cart")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully cleared cart",
	})
}
