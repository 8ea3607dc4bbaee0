package flow

import (
	"fmt"
	"net/url"
)

func (r RedirectConfig) productFirst() bool {
	if r.ProductID == "" {
		return false
	}
	return r.ProductFirst || r.Params.Get("flow") == productFirstFlow
}

// buildRedirectURL appends the forwarded subset of params plus extra to base.
func buildRedirectURL(base string, params url.Values, extra map[string]string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse redirect url %q: %w", base, err)
	}
	q := u.Query()
	for _, name := range ForwardedParams {
		if vs, ok := params[name]; ok {
			q[name] = append([]string(nil), vs...)
		}
	}
	for k, v := range extra {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
