package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/modernshop/storefront/checkout/internal/otel"
	"github.com/modernshop/storefront/checkout/pkg/request"
	"github.com/modernshop/storefront/checkout/pkg/response"
	"github.com/modernshop/storefront/internal/config"
	inErrors "github.com/modernshop/storefront/internal/errors"
	"github.com/modernshop/storefront/internal/httpx"
	"github.com/modernshop/storefront/internal/log"
	inOtel "github.com/modernshop/storefront/internal/otel"
	"github.com/modernshop/storefront/internal/store"
)

type CheckoutService struct {
	config config.Payment
}

func NewCheckoutService(config config.Payment) *CheckoutService {
	return &CheckoutService{config: config}
}

// BuildLineItems maps each cart line to one session line item. Price and
// quantity come from the line as rendered; missing product metadata degrades
// to an empty description and no images, never a failed build.
func BuildLineItems(lines []store.CartLine) []request.LineItem {
	items := make([]request.LineItem, len(lines))
	for i, line := range lines {
		item := request.LineItem{
			Quantity: line.Quantity,
			Images:   []string{},
		}
		if line.Product != nil {
			item.Name = line.Product.Name
			item.Description = line.Product.Description
			item.Price = line.Product.Price
			if len(line.Product.Images) > 0 {
				item.Images = []string{line.Product.Images[0].ImageURL}
			}
		}
		items[i] = item
	}
	return items
}

// CreateSession submits the cart to the payment provider and returns the
// redirect target. A response without a url is a failure the caller must
// surface, not a silent dead end.
func (s *CheckoutService) CreateSession(
	c context.Context,
	lines []store.CartLine,
) (string, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService CreateSession")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutService CreateSession").
		Int(log.KeyLineItems, len(lines)).
		Logger()

	if len(lines) == 0 {
		err := inErrors.ErrEmptyCart
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}

	logger = logger.With().Str(log.KeyProcess, "building line items").Logger()
	logger.Info().Msg("building line items")
	body := request.CreateSession{
		Items:      BuildLineItems(lines),
		SuccessUrl: s.config.SuccessURL,
		CancelUrl:  s.config.CancelURL,
	}
	bodyJson, err := json.Marshal(body)
	if err != nil {
		err = fmt.Errorf("failed marshaling session request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("built line items")

	logger = logger.With().Str(log.KeyProcess, "creating session request").Logger()
	logger.Info().Msg("creating session request")
	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		s.config.SessionURL,
		bytes.NewBuffer(bodyJson),
	)
	if err != nil {
		err = fmt.Errorf("failed creating session request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	req.Header.Add(httpx.HeaderContentType, httpx.HeaderValueJson)
	req.Header.Add(httpx.KeyHeaderRequestID, log.RequestIDFromContext(c))
	logger.Info().Msg("created session request")

	logger = logger.With().Str(log.KeyProcess, "sending session request").Logger()
	logger.Info().Msg("sending session request")
	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed sending session request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	defer resp.Body.Close()
	logger.Info().Msg("sent session request")

	logger = logger.With().Str(log.KeyProcess, "decoding session response").Logger()
	logger.Info().Msg("decoding session response")
	session := response.Session{}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		err = fmt.Errorf("failed decoding session response with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf(
			"payment provider returned status code=%d",
			resp.StatusCode,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	if session.URL == "" {
		err = inErrors.ErrNoRedirectURL
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Str(log.KeyRedirectURL, session.URL).Msg("decoded session response")

	return session.URL, nil
}
