// Package result defines the outcome envelope returned by every store
// mutation and the error taxonomy behind it.
package result

import (
	"errors"
	"fmt"
)

// Code classifies a failed operation.
type Code string

const (
	CodeStorageUnavailable Code = "storage_unavailable"
	CodeQuotaExceeded      Code = "quota_exceeded"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvalidProduct     Code = "invalid_product"
	CodeInvalidQuantity    Code = "invalid_quantity"
	CodeNotFound           Code = "not_found"
	CodeAlreadyPresent     Code = "already_present"
	CodeCollectionFull     Code = "collection_full"
	CodeWishlistFull       Code = "wishlist_full"
	CodeCartFull           Code = "cart_full"
	CodeInternal           Code = "internal"
)

// Sentinel errors, one per code, for use with errors.Is.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyPresent     = errors.New("already present")
	ErrCollectionFull     = errors.New("collection full")
	ErrWishlistFull       = errors.New("wishlist full")
	ErrCartFull           = errors.New("cart full")
	ErrInternal           = errors.New("internal error")
)

var sentinels = map[Code]error{
	CodeStorageUnavailable: ErrStorageUnavailable,
	CodeQuotaExceeded:      ErrQuotaExceeded,
	CodeInvalidInput:       ErrInvalidInput,
	CodeInvalidProduct:     ErrInvalidProduct,
	CodeInvalidQuantity:    ErrInvalidQuantity,
	CodeNotFound:           ErrNotFound,
	CodeAlreadyPresent:     ErrAlreadyPresent,
	CodeCollectionFull:     ErrCollectionFull,
	CodeWishlistFull:       ErrWishlistFull,
	CodeCartFull:           ErrCartFull,
	CodeInternal:           ErrInternal,
}

// parents maps refined codes to the broader code they specialize.
var parents = map[Code]Code{
	CodeInvalidProduct:  CodeInvalidInput,
	CodeInvalidQuantity: CodeInvalidInput,
	CodeWishlistFull:    CodeCollectionFull,
	CodeCartFull:        CodeCollectionFull,
}

// Sentinel returns the sentinel error for c, or ErrInternal for unknown codes.
func (c Code) Sentinel() error {
	if err, ok := sentinels[c]; ok {
		return err
	}
	return ErrInternal
}

// Is reports whether c equals target or refines it.
func (c Code) Is(target Code) bool {
	for code := c; code != ""; code = parents[code] {
		if code == target {
			return true
		}
	}
	return false
}

// Result is the outcome of a store operation. Message is human readable and
// localized; Code is set on failure.
type Result struct {
	Success bool   `json:"success"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message"`
}

// OK returns a successful result.
func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail returns a failed result with the given code.
func Fail(code Code, message string) Result {
	return Result{Code: code, Message: message}
}

// Err converts a failed result into an error that matches the code's
// sentinel (and the sentinels of the codes it refines) with errors.Is.
// Returns nil for successful results.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	code := r.Code
	if code == "" {
		code = CodeInternal
	}
	return &Error{Code: code, Message: r.Message}
}

// Error is the error form of a failed Result.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches the sentinel of the error's code and of every code it refines.
func (e *Error) Is(target error) bool {
	for code := e.Code; code != ""; code = parents[code] {
		if sentinels[code] == target {
			return true
		}
	}
	return false
}

// CodeOf extracts the Code from err. Returns CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	for code, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeInternal
}

// ClearResult is returned by bulk removal operations.
type ClearResult struct {
	Result
	ClearedCount int `json:"clearedCount"`
}

// ImportResult is returned by import operations. Errors lists entries that
// were skipped because they could not be decoded or stored.
type ImportResult struct {
	Result
	ImportedCount int      `json:"importedCount"`
	Errors        []string `json:"errors,omitempty"`
}
