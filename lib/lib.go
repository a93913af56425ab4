package lib

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

var Commands = make(map[string]func())

var Args = make(map[string]ArgsStruct)

type ArgsStruct interface {
	Description() string
}

func Contains(parts []string, part string) bool {
	for _, p := range parts {
		if p == part {
			return true
		}
	}
	return false
}

func Pformat(i interface{}) string {
	val, err := json.MarshalIndent(i, "", "    ")
	if err != nil {
		panic(err)
	}
	return string(val)
}

// PrintJSON writes one value to stdout, indented for a terminal and compact
// for pipes.
func PrintJSON(i interface{}) error {
	var bytes []byte
	var err error
	if isatty.IsTerminal(os.Stdout.Fd()) {
		bytes, err = json.MarshalIndent(i, "", "    ")
	} else {
		bytes, err = json.Marshal(i)
	}
	if err != nil {
		return err
	}
	fmt.Println(string(bytes))
	return nil
}
