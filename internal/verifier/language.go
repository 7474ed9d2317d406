package verifier

// SuggesterFor resolves a Suggester by language name (python, csharp,
// java, javascript), matching the identifier grammar languages
// internal/validator checks names against. Returns nil for an unknown
// language, which callers treat as "omit suggestions".
func SuggesterFor(language string) Suggester {
	switch language {
	case "python":
		return SuggestPython
	case "csharp", "c#", "dotnet":
		return SuggestCSharp
	case "java":
		return SuggestJava
	case "javascript", "js":
		return SuggestJavaScript
	default:
		return nil
	}
}
