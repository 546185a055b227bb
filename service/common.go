package service

import (
	"fmt"
	"os"
	"strings"
)

// confirm asks a yes/no question on stdin. Anything but y or yes is a no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
