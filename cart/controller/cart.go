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

	"github.com/modernshop/storefront/cart/internal/otel"
	"github.com/modernshop/storefront/cart/pkg/request"
	"github.com/modernshop/storefront/cart/pkg/response"
	inErrors "github.com/modernshop/storefront/internal/errors"
	"github.com/modernshop/storefront/internal/httpx"
	"github.com/modernshop/storefront/internal/log"
	inOtel "github.com/modernshop/storefront/internal/otel"
	"github.com/modernshop/storefront/internal/reconciler"
)

type CartController struct {
	reconciler *reconciler.Reconciler
}

func AttachCartController(router *mux.Router, rec *reconciler.Reconciler) {
	controller := CartController{reconciler: rec}

	router.HandleFunc("", controller.FindCart).Methods(http.MethodGet)
	router.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{lineId}", controller.UpdateQuantity).Methods(http.MethodPut)
	router.HandleFunc("/items/{lineId}", controller.RemoveItem).Methods(http.MethodDelete)
}

func statusCodeFromError(err error) int {
	if errors.Is(err, inErrors.ErrNotSignedIn) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, inErrors.ErrLineNotFound) ||
		errors.Is(err, inErrors.ErrProductMissing) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (t CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController FindCart").
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
	logger.Info().Int(log.KeyLineItems, len(lines)).Msg("loaded cart")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully loaded cart",
		"data": map[string]interface{}{
			"cart": response.NewCart(lines),
		},
	})
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.AddCartItem{}
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
		Str(log.KeyProcess, "adding cart item").
		Logger()
	logger.Info().Msg("adding cart item")
	c = logger.WithContext(c)
	line, err := t.reconciler.AddOrIncrement(c, reqBody.ProductId)
	if err != nil {
		err = fmt.Errorf("failed adding cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Int32(log.KeyQuantity, line.Quantity).Msg("added cart item")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully added cart item",
		"data": map[string]interface{}{
			"line":  line,
			"count": t.reconciler.CartCount(c),
		},
	})
}

func (t CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController UpdateQuantity").
		Str(log.KeyProcess, "validating lineId").
		Logger()

	logger.Info().Msg("validating lineId is valid uuid")
	pathValues := mux.Vars(r)
	lineId, err := uuid.Parse(pathValues["lineId"])
	if err != nil {
		err = fmt.Errorf("failed validating lineId=%s with error=%w", pathValues["lineId"], err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyLineID, lineId.String()).Logger()
	logger.Info().Msgf("valid lineId=%s", lineId.String())

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	logger.Info().Msg("decoding requestbody")
	reqBody := request.UpdateQuantity{}
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

	logger = logger.With().
		Int32(log.KeyQuantity, reqBody.Quantity).
		Str(log.KeyProcess, "updating quantity").
		Logger()
	logger.Info().Msg("updating quantity")
	c = logger.WithContext(c)
	if err := t.reconciler.SetQuantity(c, lineId, reqBody.Quantity); err != nil {
		err = fmt.Errorf("failed updating quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated quantity")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("updated quantity for lineId=%s", lineId.String()),
		"data": map[string]interface{}{
			"cart": response.NewCart(t.reconciler.Lines(c)),
		},
	})
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Str(log.KeyProcess, "validating lineId").
		Logger()

	logger.Info().Msg("validating lineId is valid uuid")
	pathValues := mux.Vars(r)
	lineId, err := uuid.Parse(pathValues["lineId"])
	if err != nil {
		err = fmt.Errorf("failed validating lineId=%s with error=%w", pathValues["lineId"], err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyLineID, lineId.String()).Logger()
	logger.Info().Msgf("valid lineId=%s", lineId.String())

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Info().Msg("removing cart item")
	c = logger.WithContext(c)
	if err := t.reconciler.Remove(c, lineId); err != nil {
		err = fmt.Errorf("failed removing lineId=%s with error=%w", lineId.String(), err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed cart item")

	httpx.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    fmt.Sprintf("removed lineId=%s", lineId.String()),
		"data": map[string]interface{}{
			"cart": response.NewCart(t.reconciler.Lines(c)),
		},
	})
}
