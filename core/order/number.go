package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/braincreator/flow-masters-commerce/core/product"
	"github.com/braincreator/flow-masters-commerce/random"
)

// Order-number prefixes by order category.
const (
	PrefixDefault      = "ORD"
	PrefixService      = "SERV"
	PrefixProduct      = "PROD"
	PrefixSubscription = "SUBS"
	PrefixCourse       = "CRSE"
)

const numberSuffixLength = 5

// Number builds a human-facing order number: PREFIX-YYYYMMDD-XXXXX with a
// random uppercase alphanumeric suffix. The format is load-bearing for
// the display helpers below, keep them in sync.
func Number(prefix string) string {
	date := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("%s-%s-%s", prefix, date, random.Upper(numberSuffixLength))
}

// ShortNumber extracts the random suffix of an order number.
func ShortNumber(number string) string {
	if i := strings.LastIndex(number, "-"); i >= 0 {
		return number[i+1:]
	}
	return number
}

// DisplayNumber renders the compact PREFIX-XXXXX form.
func DisplayNumber(number string) string {
	parts := strings.Split(number, "-")
	if len(parts) < 3 {
		return number
	}
	return parts[0] + "-" + parts[len(parts)-1]
}

// PrefixFor picks the prefix of an order holding the given product kinds:
// a uniform kind maps to its own prefix, a mixed order falls back to the
// default one.
func PrefixFor(kinds ...product.Kind) string {
	if len(kinds) == 0 {
		return PrefixDefault
	}

	first := kinds[0]
	for _, k := range kinds[1:] {
		if k != first {
			return PrefixDefault
		}
	}

	switch first {
	case product.KindService:
		return PrefixService
	case product.KindProduct:
		return PrefixProduct
	case product.KindSubscription:
		return PrefixSubscription
	case product.KindCourse:
		return PrefixCourse
	}
	return PrefixDefault
}
