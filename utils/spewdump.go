package utils

import (
	"log"

	"github.com/davecgh/go-spew/spew"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.MaxDepth = 3
}

func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

func LogDump(a ...interface{}) {
	log.Print(spewConfig.Sdump(a...))
}
