package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/modernshop/storefront/internal/log"
	inOtel "github.com/modernshop/storefront/internal/otel"
	"github.com/modernshop/storefront/internal/store"
	"github.com/modernshop/storefront/product/internal/cache"
	"github.com/modernshop/storefront/product/internal/otel"
)

// catalogTTL bounds staleness of cached listings; the catalog is edited
// out-of-band so there is no invalidation hook to rely on.
const catalogTTL = 5 * time.Minute

type ProductService struct {
	products store.Products
	cache    *redis.Client
}

func NewProductService(products store.Products, cacheClient *redis.Client) ProductService {
	return ProductService{products: products, cache: cacheClient}
}

func (svc ProductService) FindProducts(
	c context.Context,
	filter store.ProductFilter,
) ([]store.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = store.SortNewest
	}
	cacheKey := cache.KeyCatalog + filter.Category + ":" + sortBy
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products in cache").Logger()
	logger.Trace().Msg("finding products in cache")
	jsonCache, err := svc.cache.JSONGet(c, cacheKey).Result()
	if err == nil && jsonCache != "" {
		products := []store.Product{}
		if err := json.Unmarshal([]byte(jsonCache), &products); err == nil {
			logger.Info().Msg("found products in cache")
			return products, nil
		}
		logger.Warn().Msg("failed unmarshaling cached products, falling back to database")
	}

	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Trace().Msg("finding products in database")
	products, err := svc.products.Find(c, store.ProductFilter{
		Category: filter.Category,
		SortBy:   sortBy,
	})
	if err != nil {
		err = fmt.Errorf("failed finding products in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found %d products in database", len(products))

	logger = logger.With().Str(log.KeyProcess, "inserting products to cache").Logger()
	logger.Trace().Msg("inserting products to cache")
	if err := svc.cache.JSONSet(c, cacheKey, "$", products).Err(); err != nil {
		// A cold cache is not a failed listing.
		err = fmt.Errorf("failed inserting products to cache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
		return products, nil
	}
	if err := svc.cache.Expire(c, cacheKey, catalogTTL).Err(); err != nil {
		logger.Warn().Err(err).Msg("failed setting catalog ttl")
	}
	logger.Info().Msg("inserted products to cache")

	return products, nil
}

func (svc ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (store.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := cache.KeyProducts + id.String()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	jsonCache, err := svc.cache.JSONGet(c, cacheKey).Result()
	if err == nil && jsonCache != "" {
		product := store.Product{}
		if err := json.Unmarshal([]byte(jsonCache), &product); err == nil {
			logger.Info().Msg("found product in cache")
			return product, nil
		}
		logger.Warn().Msg("failed unmarshaling cached product, falling back to database")
	}

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	product, err := svc.products.FindByID(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding product in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return store.Product{}, err
	}
	logger.Info().Msg("found product in database")

	logger = logger.With().Str(log.KeyProcess, "inserting product to cache").Logger()
	logger.Trace().Msg("inserting product to cache")
	if err := svc.cache.JSONSet(c, cacheKey, "$", product).Err(); err != nil {
		err = fmt.Errorf("failed inserting product to cache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
		return product, nil
	}
	if err := svc.cache.Expire(c, cacheKey, catalogTTL).Err(); err != nil {
		logger.Warn().Err(err).Msg("failed setting product ttl")
	}
	logger.Info().Msg("inserted product to cache")

	return product, nil
}
