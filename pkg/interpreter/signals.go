package interpreter

import (
	"fmt"

	"github.com/lolsborn/quest-sub012/pkg/runtime"
)

// Control flow travels through the evaluator as dedicated signal types
// implementing error. Only raiseSignal carries an exception value, so
// try/catch structurally cannot intercept return, break, or continue.

type returnSignal struct {
	value runtime.Value
}

func (returnSignal) Error() string { return "return" }

type breakSignal struct{}

func (breakSignal) Error() string { return "break" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue" }

type raiseSignal struct {
	exc *runtime.ExceptionValue
}

func (r raiseSignal) Error() string { return r.exc.String() }

// UnhandledException is the error an embedding host receives when a raised
// exception reaches the top level.
type UnhandledException struct {
	Exc *runtime.ExceptionValue
}

func (e *UnhandledException) Error() string {
	return fmt.Sprintf("unhandled %s", e.Exc.String())
}
