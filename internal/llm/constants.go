package llm

const (
	extensionJS  = ".js"
	extensionJSX = ".jsx"
	extensionTS  = ".ts"
	extensionTSX = ".tsx"
	extensionMTS = ".mts"
	extensionCTS = ".cts"
)

// scriptExtensions are the files the type-safety and performance agents read.
var scriptExtensions = []string{
	extensionTS, extensionTSX, extensionJS, extensionJSX, extensionMTS, extensionCTS,
}

// defaultExcludeDirs are never sent to a model, whatever the repository says.
var defaultExcludeDirs = []string{".git", "node_modules", "vendor", "dist", "build", ".next"}
