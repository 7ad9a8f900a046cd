// Package functions holds the tree-sitter patterns for declared functions.
package functions

// Queries matches function declarations in both grammars. The helper-method
// extractor reads leading comments from the captured declaration.
//
// Captures:
//   - @function.definition: the function_declaration node
//   - @function.name: its identifier
const Queries = `
(function_declaration
  name: (identifier) @function.name
) @function.definition
`
