package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/skratchdot/open-golang/open"
	"golang.org/x/crypto/ssh/terminal"
)

func prompt(prompt string, sensitive bool) (string, error) {
	return promptWithOutput(prompt, sensitive, os.Stderr)
}

func promptWithOutput(prompt string, sensitive bool, output *os.File) (string, error) {
	fmt.Fprintf(output, "%s: ", prompt)
	defer fmt.Fprintf(output, "\n")

	if sensitive {
		var input []byte
		input, err := terminal.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(input)), nil
	}
	reader := bufio.NewReader(os.Stdin)
	value, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// prompter is what the sign-in loop needs from the terminal.
type prompter interface {
	Prompt(label string, sensitive bool) (string, error)
	Select(label string, items []string) (int, error)
	Open(url string) error
	Say(format string, args ...interface{})
}

type terminalPrompter struct{}

func (terminalPrompter) Prompt(label string, sensitive bool) (string, error) {
	return prompt(label, sensitive)
}

func (terminalPrompter) Select(label string, items []string) (int, error) {
	return chooseOne(label, items)
}

func (terminalPrompter) Open(url string) error {
	return open.Run(url)
}

func (terminalPrompter) Say(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
