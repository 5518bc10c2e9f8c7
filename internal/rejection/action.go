package rejection

import (
	"context"
	"net/url"
	"strings"
)

// DefaultBasePath is the route prefix of the signing pages.
const DefaultBasePath = "/sign"

// Callback receives the accepted reason after a successful rejection.
type Callback func(ctx context.Context, reason string) error

// Navigator moves the user to another destination in the host application.
type Navigator interface {
	Navigate(ctx context.Context, destination string) error
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, destination string) error

func (f NavigatorFunc) Navigate(ctx context.Context, destination string) error {
	return f(ctx, destination)
}

// Action is the terminal step after a successful rejection.
// It is either a Delegate or a Redirect.
type Action interface {
	Dispatch(ctx context.Context, reason string) error
	isAction()
}

// Delegate hands the accepted reason to the embedding context.
type Delegate struct {
	Callback Callback
}

func (d Delegate) Dispatch(ctx context.Context, reason string) error {
	return d.Callback(ctx, reason)
}

func (Delegate) isAction() {}

// Redirect navigates to the rejection confirmation destination.
type Redirect struct {
	Destination string
	Navigator   Navigator
}

func (r Redirect) Dispatch(ctx context.Context, _ string) error {
	return r.Navigator.Navigate(ctx, r.Destination)
}

func (Redirect) isAction() {}

// SelectAction picks Delegate when a callback is supplied, otherwise a Redirect
// to the confirmation page for token under basePath.
func SelectAction(cb Callback, nav Navigator, basePath, token string) Action {
	if cb != nil {
		return Delegate{Callback: cb}
	}
	return Redirect{
		Destination: RejectedPath(basePath, token),
		Navigator:   nav,
	}
}

// RejectedPath returns the confirmation destination for token.
func RejectedPath(basePath, token string) string {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return strings.TrimSuffix(basePath, "/") + "/" + url.PathEscape(token) + "/rejected"
}
