// Package ai resolves medicines the store does not know by asking a
// generative text model, and turns its free text answer into fields.
package ai

import "fmt"

const promptTemplate = "Provide detailed information about the medicine '%s':\n" +
	"Use Case: [...]\n" +
	"Composition: [...]\n" +
	"Side Effects: [...]\n" +
	"If unknown, say so."

// BuildPrompt fills the fixed instruction template with the medicine name
func BuildPrompt(name string) string {
	return fmt.Sprintf(promptTemplate, name)
}
