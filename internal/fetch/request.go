package fetch

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Request holds the parameters of one fetch. Start and End are both inclusive.
// PageSize 0 selects the source maximum.
type Request struct {
	Symbol    string    `validate:"required"`
	Start     time.Time `validate:"required"`
	End       time.Time `validate:"required,gtefield=Start"`
	Timeframe string    `validate:"required"`
	PageSize  int       `validate:"gte=0"`
}

// normalize checks req against src and returns a copy with PageSize resolved.
func (r Request) normalize(src PageSource) (Request, error) {
	if err := validate.Struct(r); err != nil {
		return r, invalidArgument(err)
	}
	if !slices.Contains(src.Timeframes(), r.Timeframe) {
		return r, fmt.Errorf("%w: incorrect timeframe %q, available options: %s",
			ErrInvalidArgument, r.Timeframe, strings.Join(src.Timeframes(), ", "))
	}
	maxSize := src.MaxPageSize()
	if r.PageSize > maxSize {
		return r, fmt.Errorf("%w: page size %d out of range [1, %d]", ErrInvalidArgument, r.PageSize, maxSize)
	}
	if r.PageSize == 0 {
		r.PageSize = maxSize
	}
	return r, nil
}

func invalidArgument(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "gtefield":
			msgs = append(msgs, "start must not be after end")
		case "required":
			msgs = append(msgs, strings.ToLower(fe.Field())+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(msgs, "; "))
}
