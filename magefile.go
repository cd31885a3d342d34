//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "glossmd"
	mainPath   = "./cmd/glossmd"
)

// Default target when running plain "mage".
var Default = Build

// Build compiles the glossmd binary into the repository root.
func Build() error {
	fmt.Println("Building", binaryName)
	return sh.RunV("go", "build", "-o", binaryName, mainPath)
}

// Install installs glossmd into GOPATH/bin.
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", mainPath)
}

// Test runs the unit tests. Integration tests run when OPENAI_API_KEY is set.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes the built binary.
func Clean() error {
	if err := os.Remove(binaryName); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
