package verifier

// SuggestJavaScript renders a JavaScript method stub for a missing step.
func SuggestJavaScript(modelName, elementName, kind string) string {
	return elementName + "() {\n}"
}
