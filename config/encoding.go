package config

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Quantum chemistry packages on Windows hosts occasionally emit cpcm
// files with legacy charmap encodings in comment lines. Default is
// plain utf8 passthrough.
var currentCharMap *charmap.Charmap

func SetEncoding(name string) error {
	if name == "" || name == "utf8" || name == "utf-8" {
		currentCharMap = nil
		return nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				currentCharMap = cm
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}
