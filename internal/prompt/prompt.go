// Package prompt renders rubric questions into prompt templates.
package prompt

import "strings"

// Placeholder is replaced with the rubric question when a template is rendered.
const Placeholder = "{question}"

// DefaultTemplateName is the name of the template seeded into an empty store.
const DefaultTemplateName = "CausalTrace Template"

// DefaultTemplateDescription describes the seeded template.
const DefaultTemplateDescription = "The default CausalTrace prompt template for analyzing causal relationships in video frames."

// DefaultTemplate is the CausalTrace method description used when no template is supplied.
const DefaultTemplate = "Analyze the video frames to answer: " + Placeholder + ". " +
	"Use the CausalTrace method: " +
	"1. Observe raw events without preconceptions. " +
	"2. Identify primary actions and their direct effects. " +
	"3. Trace backward to confirm the cause precedes the effect. " +
	"4. Consider counterfactuals: would the effect occur without the cause? " +
	"5. Rule out confounding factors and coincidental correlations. " +
	"Provide a clear explanation of the causal chain, avoiding assumptions or statistical correlations."

// Build renders the prompt for question. An empty template selects DefaultTemplate.
// Rendering is a literal replacement of Placeholder; a template without it is
// returned verbatim.
func Build(question, template string) string {
	if template == "" {
		template = DefaultTemplate
	}
	return strings.ReplaceAll(template, Placeholder, question)
}

// HasPlaceholder reports whether template contains Placeholder.
func HasPlaceholder(template string) bool {
	return strings.Contains(template, Placeholder)
}
