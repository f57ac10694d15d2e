package assistant

import "github.com/manifoldco/promptui"

// PromptReader reads user input from the terminal.
type PromptReader struct{}

// ReadLine prompts for and returns one line of input.
func (PromptReader) ReadLine(label string) (string, error) {
	prompt := promptui.Prompt{Label: label}
	return prompt.Run()
}
