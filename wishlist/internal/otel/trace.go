package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/modernshop/storefront/internal/constants"
)

var Tracer = otel.Tracer(constants.AppStorefrontService)
