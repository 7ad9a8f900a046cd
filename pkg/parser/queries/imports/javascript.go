package imports

// JSQueries matches ES module imports. JavaScript has no require-clause
// import form, so only the @import.* captures are produced.
const JSQueries = `
(import_statement
  source: (string) @import.source
) @import.statement
`
