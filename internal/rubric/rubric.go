// Package rubric holds the fixed questions every evaluation run answers.
package rubric

var questions = [...]string{
	"Describe the subject's initial position and surroundings.",
	"Detail the subject's movement and direction.",
	"Identify interactions with physical elements.",
	"Observe background activity.",
	"Describe facial expressions and body language.",
	"Explain environmental progression.",
	"Comment on camera perspective and awareness.",
	"Describe final position and departure.",
	"Comment on video quality and disturbances.",
	"Construct event narrative.",
}

// Len is the number of rubric questions.
const Len = len(questions)

// Questions returns the rubric in order. The returned slice is a copy.
func Questions() []string {
	out := make([]string, Len)
	copy(out, questions[:])
	return out
}
