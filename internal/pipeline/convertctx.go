package pipeline

import "context"

// convertCtx runs convert on content and gives up when ctx is done first.
// goldmark takes no context, so an abandoned conversion finishes in the
// background and its result is dropped.
func convertCtx(ctx context.Context, content string, convert func(string) (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := convert(content)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.out, r.err
	}
}
