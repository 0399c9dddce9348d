package observability

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coachpo/materialcalc/errs"
)

// AggregateErrors drops nil entries, logs what remains under operation and
// returns them joined. Offending input fields are listed when the errors
// carry them. A nil return means every entry was nil.
func AggregateErrors(operation string, problems []error, fields ...Field) error {
	kept := make([]error, 0, len(problems))
	var inputs []string
	for _, err := range problems {
		if err == nil {
			continue
		}
		kept = append(kept, err)
		if field := errs.FieldOf(err); field != "" {
			inputs = append(inputs, field)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	logFields := make([]Field, 0, len(fields)+3)
	logFields = append(logFields, fields...)
	logFields = append(logFields,
		Field{Key: "operation", Value: operation},
		Field{Key: "error_count", Value: len(kept)},
	)
	if len(inputs) > 0 {
		logFields = append(logFields, Field{Key: "fields", Value: strings.Join(inputs, ",")})
	}
	Log().Error("validation errors", logFields...)
	return fmt.Errorf("%s failed: %w", operation, errors.Join(kept...))
}
