package validation

import (
	"fmt"
	"time"

	"github.com/dropDatabas3/zonetoken/internal/claims"
)

// DefaultClockSkew es la tolerancia para exp/nbf.
const DefaultClockSkew = 5 * time.Second

// TimestampValidator rechaza tokens vencidos (exp) o aún no válidos (nbf).
// Ambos claims son opcionales; solo se validan si están presentes.
type TimestampValidator struct {
	Skew time.Duration
	Now  func() time.Time
}

// NewTimestampValidator: skew < 0 => DefaultClockSkew.
func NewTimestampValidator(skew time.Duration) *TimestampValidator {
	if skew < 0 {
		skew = DefaultClockSkew
	}
	return &TimestampValidator{Skew: skew, Now: time.Now}
}

func (v *TimestampValidator) Validate(cs *claims.ClaimSet) error {
	now := time.Now()
	if v.Now != nil {
		now = v.Now()
	}

	// sin exp no hay vencimiento que chequear, igual que nbf
	if cs.Has(claims.Expiry) {
		exp, ok := cs.Time(claims.Expiry)
		if !ok {
			return fmt.Errorf("%w: exp is not a NumericDate", ErrExpiredToken)
		}
		if !now.Add(-v.Skew).Before(exp) {
			return fmt.Errorf("%w: exp=%s", ErrExpiredToken, exp.UTC().Format(time.RFC3339))
		}
	}

	if cs.Has(claims.NotBefore) {
		nbf, ok := cs.Time(claims.NotBefore)
		if !ok {
			return fmt.Errorf("%w: nbf is not a NumericDate", ErrNotYetValid)
		}
		if nbf.After(now.Add(v.Skew)) {
			return fmt.Errorf("%w: nbf=%s", ErrNotYetValid, nbf.UTC().Format(time.RFC3339))
		}
	}
	return nil
}
