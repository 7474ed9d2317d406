package verifier

// SuggestPython renders a Python method stub for a missing step.
func SuggestPython(modelName, elementName, kind string) string {
	return "def " + elementName + "(self):\n    pass"
}
