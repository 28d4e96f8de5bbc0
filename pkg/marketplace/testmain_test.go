package marketplace

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// keep-alive loops of httptest clients wind down asynchronously
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}
