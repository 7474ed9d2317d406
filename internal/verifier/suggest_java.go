package verifier

// SuggestJava renders a Java method stub for a missing step.
func SuggestJava(modelName, elementName, kind string) string {
	return "public void " + elementName + "() {\n}"
}
