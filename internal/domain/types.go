package domain

// Estimation is a generated Fermi problem with its worked solution.
// Both fields are non-empty and trimmed, with the prompt markers removed.
type Estimation struct {
	Problem  string
	Solution string
}
