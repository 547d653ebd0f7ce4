package config

const (
	VerbosityWarning = iota
	VerbosityInfo
	VerbosityDebug
)

type Verbosity int

var currentVerbosity Verbosity

func GetVerbosity() Verbosity {
	return currentVerbosity
}

func SetVerbosity(v Verbosity) {
	if v > VerbosityDebug {
		v = VerbosityDebug
	}
	currentVerbosity = v
}
