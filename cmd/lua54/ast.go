package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"git.lolli.tech/lollipopkit/lua54/compiler/parser"
)

// writeAST mirrors the teacher's ast.go WriteAst debug helper: parse a
// script and dump its tree as indented JSON next to it, but marshaled
// with jsoniter instead of encoding/json.
func writeAST(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var block any
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		block = parser.Parse(string(data), path)
	}()
	if err != nil {
		return err
	}

	j, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(block, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path+".ast.json", j, 0644)
}
