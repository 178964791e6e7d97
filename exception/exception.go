package exception

import (
	"os"
	"runtime/debug"

	"github.com/mezonai/stakeledger/logx"
	"github.com/mezonai/stakeledger/monitoring"
)

func SafeGo(name string, fn func()) {
	go func() {
		defer recoverPanic(name, false)
		fn()
	}()
}

// SafeGoWithPanic is SafeGo for goroutines the process cannot run without;
// a panic is logged and the process exits.
func SafeGoWithPanic(name string, fn func()) {
	go func() {
		defer recoverPanic(name, true)
		fn()
	}()
}

func recoverPanic(name string, fatal bool) {
	if r := recover(); r != nil {
		monitoring.IncreasePanicCount()
		logx.Error("PANIC", "Panic in: ", name, " ", r, string(debug.Stack()))
		if fatal {
			os.Exit(1)
		}
	}
}
