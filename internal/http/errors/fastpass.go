package errors

import (
	stderrors "errors"
	"strings"

	"github.com/dropDatabas3/fastpass/internal/fastpass"
)

// fromFastpass mapea la taxonomía de fastpass. Devuelve nil si err no es de
// Fastpass.
func fromFastpass(err error) *AppError {
	var (
		verr *fastpass.ValidationError
		eerr *fastpass.EncodingError
	)
	switch {
	case stderrors.Is(err, fastpass.ErrConfiguration):
		// si también hay claims faltantes, igual es culpa del servidor
		return ErrFastpassMisconfigured.WithCause(err)
	case stderrors.As(err, &verr):
		return ErrMissingFields.WithDetail(strings.Join(verr.Fields, ",")).WithCause(err)
	case stderrors.As(err, &eerr):
		return ErrInvalidFormat.WithDetail(eerr.Key + ": " + eerr.Reason).WithCause(err)
	case stderrors.Is(err, fastpass.ErrSignatureMismatch), stderrors.Is(err, fastpass.ErrConsumerMismatch):
		return ErrInvalidSignature.WithCause(err)
	case stderrors.Is(err, fastpass.ErrStaleTimestamp):
		return ErrStaleURL.WithCause(err)
	case stderrors.Is(err, fastpass.ErrMalformedURL):
		return ErrMalformedURL.WithCause(err)
	}
	return nil
}
