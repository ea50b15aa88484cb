package project

// Language of the project's source code.
type Language string

const (
	LanguageUnknown    Language = "unknown"
	LanguageNode       Language = "node"
	LanguageGo         Language = "go"
	LanguageBash       Language = "bash"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
)

// ParseLanguage maps a configured value onto a Language. Unrecognized
// values are kept verbatim so custom toolchains still round-trip.
func ParseLanguage(s string) Language {
	if s == "" {
		return LanguageUnknown
	}
	return Language(s)
}

// IsNodeBased is true for languages whose dependencies live in package.json.
func (l Language) IsNodeBased() bool {
	switch l {
	case LanguageNode, LanguageJavaScript, LanguageTypeScript:
		return true
	}
	return false
}

// Type classifies a project within the workspace.
type Type string

const (
	TypeUnknown     Type = "unknown"
	TypeApplication Type = "application"
	TypeLibrary     Type = "library"
	TypeTool        Type = "tool"
)

// ParseType maps a configured value onto a Type.
func ParseType(s string) Type {
	switch Type(s) {
	case TypeApplication, TypeLibrary, TypeTool:
		return Type(s)
	}
	return TypeUnknown
}
