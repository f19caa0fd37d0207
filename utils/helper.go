package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

var CountryCode = "FR"

// NormalizePhoneNumber parses and formats a phone number to E.164.
// Returns the input unchanged when it cannot be parsed (contact fields are
// free-form; normalization is best-effort).
func NormalizePhoneNumber(phoneNumber, countryCode string) string {
	trimmed := strings.TrimSpace(phoneNumber)
	if trimmed == "" {
		return ""
	}
	num, err := libphonenumber.Parse(trimmed, countryCode)
	if err != nil {
		return trimmed
	}
	if !libphonenumber.IsValidNumber(num) {
		return trimmed
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}

func ProcessValidationErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = fe.Tag()
		}
		return out
	}
	out["error"] = err.Error()
	return out
}

func DereferencePtr[T any](ptr *T, defaults ...T) T {
	if ptr != nil {
		return *ptr
	}
	var def T
	if len(defaults) > 0 {
		def = defaults[0]
	}
	return def
}

// QuoteLockKey is the redis key serializing version creation for one quote.
// Distinct quotes never contend.
func QuoteLockKey(quoteId string) string {
	return "quote-version:" + quoteId
}

// ObtainQuoteLock serializes version creation per quote. The caller must
// Release the returned lock after its transaction commits or rolls back.
// Returns ErrorConflict when another request holds the lock.
func ObtainQuoteLock(ctx context.Context, quoteId string, moduleName string, functionName string) (*redislock.Lock, error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// Avoid nil-pointer panics when Redis lock isn't initialized yet.
		config.LogError(logger, moduleName, functionName, "Redis lock not initialized", quoteId, errors.New("redis lock is nil"))
		return nil, errors.New("service not ready (redis lock not initialized)")
	}
	lock, err := locker.Obtain(ctx, QuoteLockKey(quoteId), 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for quote", quoteId, err)
		return nil, ErrorConflict
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for quote", quoteId, err)
		return nil, err
	}
	return lock, nil
}
