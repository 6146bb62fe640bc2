package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/modernshop/storefront/internal/errors"
	"github.com/modernshop/storefront/internal/httpx"
	"github.com/modernshop/storefront/internal/log"
	inOtel "github.com/modernshop/storefront/internal/otel"
	"github.com/modernshop/storefront/internal/reconciler"
	"github.com/modernshop/storefront/wishlist/internal/otel"
	"github.com/modernshop/storefront/wishlist/pkg/request"
	"github.com/modernshop/storefront/wishlist/pkg/response"
)

type WishlistController struct {
	reconciler *reconciler.Reconciler
}

func AttachWishlistController(router *mux.Router, rec *reconciler.Reconciler) {
	controller := WishlistController{reconciler: rec}

	router.HandleFunc("", controller.FindWishlist).Methods(http.MethodGet)
	router.HandleFunc("/toggle", controller.Toggle).Methods(http.MethodPost)
	router.HandleFunc("/{entryId}/move-to-cart", controller.MoveToCart).
		Methods(http.MethodPost)
}

func statusCodeFromError(err error) int {
	if errors.Is(err, inErrors.ErrNotSignedIn) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, inErrors.ErrEntryNotFound) ||
		errors.Is(err, inErrors.ErrProductMissing) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (t WishlistController) FindWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController FindWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistController FindWishlist").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading wishlist").Logger()
	logger.Info().Msg("loading wishlist")
	c = logger.WithContext(c)
	entries, err := t.reconciler.LoadWishlist(c)
	if err != nil {
		err = fmt.Errorf("failed loading wishlist with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("loaded %d wishlist entries", len(entries))

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully loaded wishlist",
		"data": map[string]interface{}{
			"wishlist": response.NewWishlist(entries),
		},
	})
}

func (t WishlistController) Toggle(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController Toggle")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistController Toggle").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.ToggleWishlist{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().
		Str(log.KeyProductID, reqBody.ProductId.String()).
		Str(log.KeyProcess, "toggling wishlist").
		Logger()
	logger.Info().Msg("toggling wishlist")
	c = logger.WithContext(c)
	wishlisted, err := t.reconciler.ToggleWishlist(c, reqBody.ProductId)
	if err != nil {
		err = fmt.Errorf("failed toggling wishlist with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Bool(log.KeyWishlisted, wishlisted).Msg("toggled wishlist")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully toggled wishlist",
		"data": map[string]interface{}{
			"wishlisted": wishlisted,
		},
	})
}

func (t WishlistController) MoveToCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "WishlistController MoveToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistController MoveToCart").
		Str(log.KeyProcess, "validating entryId").
		Logger()

	logger.Info().Msg("validating entryId is valid uuid")
	pathValues := mux.Vars(r)
	entryId, err := uuid.Parse(pathValues["entryId"])
	if err != nil {
		err = fmt.Errorf("failed validating entryId=%s with error=%w", pathValues["entryId"], err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyEntryID, entryId.String()).Logger()
	logger.Info().Msgf("valid entryId=%s", entryId.String())

	logger = logger.With().Str(log.KeyProcess, "moving to cart").Logger()
	logger.Info().Msg("moving to cart")
	c = logger.WithContext(c)
	if err := t.reconciler.MoveToCart(c, entryId); err != nil {
		err = fmt.Errorf("failed moving entryId=%s to cart with error=%w", entryId.String(), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("moved to cart")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("moved entryId=%s to cart", entryId.String()),
		"data": map[string]interface{}{
			"count": t.reconciler.CartCount(c),
		},
	})
}
