package main

import (
	"os"
	"runtime/debug"

	"github.com/mezonai/stakeledger/cmd"
	"github.com/mezonai/stakeledger/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("STAKELEDGER CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
