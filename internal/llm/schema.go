package llm

import (
	"context"
	"fmt"
)

// DefaultParseRetries is the retry ceiling for schema-constrained generation.
// After this many attempts the caller receives ErrResponseParseFailed and the
// result is recorded as missing rather than defaulted.
const DefaultParseRetries = 3

// GenerateSchema issues a generation request and parses the response into T,
// retrying with a fresh sample when the model does not honor the schema.
// Transport errors are returned immediately; only parse failures consume
// retry attempts.
func GenerateSchema[T any](ctx context.Context, gen Generator, req GenerationRequest, retries int) (T, error) {
	var zero T

	if retries <= 0 {
		retries = DefaultParseRetries
	}
	req.JSONMode = true

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		completion, err := gen.Generate(ctx, req)
		if err != nil {
			return zero, err
		}

		result, err := ExtractJSONAs[T](completion.Content)
		if err != nil {
			lastErr = err
			continue
		}

		return result, nil
	}

	return zero, NewParseError(
		fmt.Sprintf("response did not match schema after %d attempts", retries), lastErr)
}
