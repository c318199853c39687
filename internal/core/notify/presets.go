package notify

import (
	"context"
	"time"

	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/result"
)

func firstOr(opts []ShowOptions) ShowOptions {
	if len(opts) > 0 {
		return opts[0]
	}
	return ShowOptions{}
}

func (q *Queue) Success(ctx context.Context, title, message string, opts ...ShowOptions) string {
	return q.Show(ctx, TypeSuccess, title, message, firstOr(opts))
}

func (q *Queue) Error(ctx context.Context, title, message string, opts ...ShowOptions) string {
	return q.Show(ctx, TypeError, title, message, firstOr(opts))
}

func (q *Queue) Warning(ctx context.Context, title, message string, opts ...ShowOptions) string {
	return q.Show(ctx, TypeWarning, title, message, firstOr(opts))
}

func (q *Queue) Info(ctx context.Context, title, message string, opts ...ShowOptions) string {
	return q.Show(ctx, TypeInfo, title, message, firstOr(opts))
}

// ShowSuccess shows message under the generic success title.
func (q *Queue) ShowSuccess(ctx context.Context, message string, opts ...ShowOptions) string {
	return q.Success(ctx, q.printer.T(i18n.TitleSuccess), message, opts...)
}

// ShowError shows message under the generic error title.
func (q *Queue) ShowError(ctx context.Context, message string, opts ...ShowOptions) string {
	return q.Error(ctx, q.printer.T(i18n.TitleError), message, opts...)
}

func (q *Queue) showResult(ctx context.Context, r result.Result, okTitle, failTitle string) string {
	if r.Success {
		return q.Success(ctx, q.printer.T(okTitle), r.Message, ShowOptions{Duration: SuccessResultDuration})
	}
	return q.Error(ctx, q.printer.T(failTitle), r.Message, ShowOptions{Duration: ErrorResultDuration})
}

// ShowCartResult surfaces a cart operation result.
func (q *Queue) ShowCartResult(ctx context.Context, r result.Result) string {
	return q.showResult(ctx, r, i18n.TitleCart, i18n.TitleCartError)
}

// ShowWishlistResult surfaces a wishlist operation result.
func (q *Queue) ShowWishlistResult(ctx context.Context, r result.Result) string {
	return q.showResult(ctx, r, i18n.TitleWishlist, i18n.TitleWishlistError)
}

// ShowStorageResult surfaces a key-value store operation result.
func (q *Queue) ShowStorageResult(ctx context.Context, r result.Result) string {
	return q.showResult(ctx, r, i18n.TitleStorage, i18n.TitleStorageError)
}

// AutoClose is a helper for ShowOptions.AutoClose.
func AutoClose(v bool) *bool {
	return &v
}

// Persistent returns options for a notification that never closes itself.
func Persistent() ShowOptions {
	return ShowOptions{AutoClose: AutoClose(false)}
}

// For returns options with the given duration.
func For(d time.Duration) ShowOptions {
	return ShowOptions{Duration: d}
}
