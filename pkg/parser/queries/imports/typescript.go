// Package imports holds the tree-sitter patterns that locate import
// declarations.
package imports

// TSQueries matches both import styles in TypeScript sources.
//
// Captures:
//   - @require.namespace, @require.source: import NS = require('./path')
//   - @alias.namespace, @alias.target: export import NS = require('./path'),
//     whose parenthesized path is parsed as the next statement
//   - @import.statement, @import.source: import ... from './path' and
//     side-effect imports
//
// Patterns are matched anywhere in the tree, including inside namespaces.
const TSQueries = `
; import Foo = require('./foo');
(import_statement
  (import_require_clause
    (identifier) @require.namespace
    (string) @require.source
  )
) @require.statement

; export import Foo = require('./foo');
(export_statement
  (import_alias
    (identifier) @alias.namespace
    (identifier) @alias.target
  )
) @alias.statement

; import { A, B } from './ab';  import * as ns from 'pkg';  import './side-effect';
(import_statement
  source: (string) @import.source
) @import.statement
`
