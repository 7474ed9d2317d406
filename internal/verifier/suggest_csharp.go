package verifier

// SuggestCSharp renders a C# method stub for a missing step.
func SuggestCSharp(modelName, elementName, kind string) string {
	return "public void " + elementName + "()\n{\n}"
}
