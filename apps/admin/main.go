package main

import (
	"log"
	"os"

	"github.com/lobitocorner/lobito/core"
	logsvc "github.com/lobitocorner/lobito/services/logger"
)

func main() {
	conf := core.NewConfig()
	conf.Debug = true // the CLI reports nothing to Rollbar
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds), conf)

	cli := &commandLine{conf: conf, logger: logger}
	err := newRootCmd(cli).Execute()
	cli.close()
	if err != nil {
		logger.Error("\nerror: " + err.Error())
		os.Exit(1)
	}
}
