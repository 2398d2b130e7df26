package annotation

import "go.uber.org/multierr"

// ProxyErrors combines the deferred failures of every error placeholder
// reachable from v into a single error. It returns nil when the tree is
// fully resolved, so callers can gate on unresolved references before
// materializing or re-encoding.
func ProxyErrors(v MemberValue) error {
	if v == nil {
		return nil
	}
	var err error
	for _, p := range v.ErrorProxies() {
		err = multierr.Append(err, p.Err())
	}
	return err
}
