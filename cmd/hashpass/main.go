// Command hashpass prints a bcrypt hash suitable for the PASSWORD variable.
//
//	go run ./cmd/hashpass 'my password'
//
// With no argument the password is read from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	pass := flag.Arg(0)
	if pass == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "usage: hashpass [-cost N] <password>")
			os.Exit(2)
		}
		pass = strings.TrimRight(line, "\r\n")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(hash))
}
