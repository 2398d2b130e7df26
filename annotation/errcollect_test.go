package annotation

import (
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/wippyai/annometa/errors"
)

type proxyAnno struct {
	Name string `anno:"name"`
}

func TestProxyErrors(t *testing.T) {
	typ := testType(t, "com.example.Proxied", proxyAnno{})
	v := mustValue(t, typ,
		Member{Name: "name", Value: NewString("ok")},
		Member{Name: "first", Value: NewError("com.example.GoneA", nil)},
		Member{Name: "rest", Value: NewArray(
			NewInt(1),
			NewError("com.example.GoneB", nil),
		)},
	)

	err := ProxyErrors(v)
	if err == nil {
		t.Fatal("ProxyErrors() = nil, want combined failures")
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), err)
	}
	for i, want := range []string{"com.example.GoneA", "com.example.GoneB"} {
		tnp, ok := errors.AsTypeNotPresent(errs[i])
		if !ok || tnp.TypeName != want {
			t.Errorf("errs[%d] = %v, want TypeNotPresentError for %s", i, errs[i], want)
		}
	}
	if !strings.Contains(err.Error(), "com.example.GoneA") {
		t.Errorf("combined error %q does not name the missing type", err)
	}
}

func TestProxyErrorsResolvedTree(t *testing.T) {
	typ := testType(t, "com.example.Clean", proxyAnno{})
	v := mustValue(t, typ, Member{Name: "name", Value: NewString("ok")})
	if err := ProxyErrors(v); err != nil {
		t.Fatalf("ProxyErrors() = %v, want nil", err)
	}
	if err := ProxyErrors(nil); err != nil {
		t.Fatalf("ProxyErrors(nil) = %v, want nil", err)
	}
}
