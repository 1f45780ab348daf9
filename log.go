package expressions

import "go.uber.org/zap"

// logger receives debug diagnostics from dispatch and persistence. It
// discards everything until SetLogger is called.
var logger = zap.NewNop()

// SetLogger installs the logger used by the package. A nil logger restores
// the default, which discards everything.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
