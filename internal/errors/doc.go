// Package errors provides structured, actionable error messages for the
// vstore command.
//
// Each Error carries a code, a category, a short message and optionally the
// configuration file location that caused it, a hint and a documentation
// link. The command prints them with Format; scripts can ask for FormatCompact
// or FormatJSON through PrintError's output format.
//
// # Error Categories
//
//   - config: vstore.toml / vstore.yaml problems
//   - storage: backend failures (open, read, write)
//   - cli: bad arguments and flags
//   - runtime: failures while serving or watching
//
// # Usage
//
//	err := errors.New("V002").
//	    WithLocation("vstore.toml", 7, 10).
//	    WithSuggestion("Strings must be quoted").
//	    Wrap(parseErr)
//
//	errors.PrintError(err, errors.OutputText)
//	// ERROR V002: Configuration file could not be parsed
//	//
//	//   vstore.toml:7:10
//	//
//	//      5 │ [storage]
//	//      6 │ backend = "file"
//	//   →  7 │ dir = ./state
//	//        │          ^
//	//
//	//   Hint: Strings must be quoted
package errors
