package llm

import "fmt"

// Markers of the text contract shared by the prompt and the parser.
const (
	ProblemMarker   = "**Problem:**"
	SolutionMarker  = "**Solution:**"
	SeparatorMarker = "---SOLUTION_SEPARATOR---"
)

// Generation settings for every backend.
const (
	maxOutputTokens = 5000
	temperature     = 1.8
)

// BuildPrompt returns the fixed instruction sent to the model.
func BuildPrompt() string {
	return fmt.Sprintf(
		"Generate a unique and interesting Fermi estimation problem suitable for a quick mental challenge. "+
			"Ensure it's a different type of problem than common examples like piano tuners or jellybeans. "+
			"Provide the problem statement clearly, starting exactly with \"%[1]s\". "+
			"Then, insert a line containing only \"%[2]s\". "+
			"Finally, provide a brief, step-by-step estimation outlining the assumptions and calculation, "+
			"and state the final approximate answer, starting exactly with \"%[3]s\". "+
			"Do not include any text before the %[1]s or after the solution ends.",
		ProblemMarker, SeparatorMarker, SolutionMarker,
	)
}
